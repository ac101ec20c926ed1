package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
)

func setupAttendanceService() (AttendanceService, *testEnv) {
	env := newTestEnv()
	env.addUser("stu-1", "student001@college.edu", model.RoleStudent)
	env.addUser("staff-1", "staff1@college.edu", model.RoleStaff)
	env.addSubject("sub-cs", "CS101", "A")
	env.addSubject("sub-ma", "MA101", "A")
	return NewAttendanceService(env.repo, env.resolver(), env.enricher(), env.logger), env
}

func TestAttendanceService_RecordAndSummary(t *testing.T) {
	svc, _ := setupAttendanceService()
	ctx := context.Background()

	sessions := []struct {
		subject, date, status string
	}{
		{"CS101", "2025-03-10", model.AttendancePresent},
		{"CS101", "2025-03-11", model.AttendanceLate},
		{"CS101", "2025-03-12", model.AttendanceAbsent},
		{"SUBJ-MA101", "2025-03-10", model.AttendanceAbsent},
		{"MA101", "2025-03-10", model.AttendancePresent}, // overwrites the absent above
	}
	for _, s := range sessions {
		resp, err := svc.Record(ctx, &dto.RecordAttendanceRequest{
			Subject: s.subject,
			Date:    s.date,
			Entries: []dto.AttendanceEntry{{Student: "1", Status: s.status}, {Student: "404", Status: s.status}},
		}, "staff-1")
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if resp.Stored != 1 || resp.Failed != 1 {
			t.Errorf("expected 1 stored / 1 failed, got %d / %d", resp.Stored, resp.Failed)
		}
	}

	mine, err := svc.Mine(ctx, "stu-1")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if len(mine.Records) != 4 {
		t.Errorf("expected 4 records, got %d", len(mine.Records))
	}
	if len(mine.Summary) != 2 {
		t.Fatalf("expected 2 subject summaries, got %d", len(mine.Summary))
	}

	cs, ma := mine.Summary[0], mine.Summary[1]
	if cs.Subject.Code != "CS101" || cs.Total != 3 || cs.Percentage != 66.67 {
		t.Errorf("unexpected CS101 summary %+v", cs)
	}
	if ma.Subject.Code != "MA101" || ma.Total != 1 || ma.Percentage != 100 {
		t.Errorf("unexpected MA101 summary %+v", ma)
	}
}

func TestAttendanceService_RecordRejectsBadInput(t *testing.T) {
	svc, _ := setupAttendanceService()
	ctx := context.Background()

	_, err := svc.Record(ctx, &dto.RecordAttendanceRequest{
		Subject: "PH101", Date: "2025-03-10",
		Entries: []dto.AttendanceEntry{{Student: "1", Status: model.AttendancePresent}},
	}, "staff-1")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("expected ErrSubjectNotFound, got %v", err)
	}

	_, err = svc.Record(ctx, &dto.RecordAttendanceRequest{
		Subject: "CS101", Date: "10/03/2025",
		Entries: []dto.AttendanceEntry{{Student: "1", Status: model.AttendancePresent}},
	}, "staff-1")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
