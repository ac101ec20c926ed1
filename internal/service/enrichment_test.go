package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
)

func TestEnricher_BoundedQueries(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 10; i++ {
		env.addSubject(fmt.Sprintf("sub-%d", i), fmt.Sprintf("CS1%02d", i), "A")
	}
	for i := 0; i < 50; i++ {
		env.addUser(fmt.Sprintf("stu-%d", i), fmt.Sprintf("student%03d@college.edu", i), model.RoleStudent)
	}
	env.addUser("staff-1", "staff1@college.edu", model.RoleStaff)

	keys := make([]RelationKeys, 500)
	for i := range keys {
		keys[i] = RelationKeys{
			SubjectID:  fmt.Sprintf("sub-%d", i%10),
			StudentID:  fmt.Sprintf("stu-%d", i%50),
			RecordedBy: "staff-1",
		}
	}

	relations, err := env.enricher().Attach(context.Background(), keys)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if len(relations) != 500 {
		t.Fatalf("expected 500 results, got %d", len(relations))
	}
	if env.subjects.listByIDCalls != 1 {
		t.Errorf("expected 1 subject query, got %d", env.subjects.listByIDCalls)
	}
	if env.users.listByIDCalls != 2 {
		t.Errorf("expected 2 user queries (students, staff), got %d", env.users.listByIDCalls)
	}

	r := relations[123]
	if r.Subject == nil || r.Subject.ID != "sub-3" {
		t.Errorf("misaligned subject: %+v", r.Subject)
	}
	if r.Student == nil || r.Student.ID != "stu-23" || r.Student.RollNumber != "023" {
		t.Errorf("misaligned student: %+v", r.Student)
	}
	if r.RecordedBy == nil || r.RecordedBy.Email != "staff1@college.edu" {
		t.Errorf("misaligned staff: %+v", r.RecordedBy)
	}
}

func TestEnricher_EmptyAndDangling(t *testing.T) {
	env := newTestEnv()
	e := env.enricher()

	out, err := e.Attach(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("empty input: %v %v", out, err)
	}
	if env.subjects.listByIDCalls+env.users.listByIDCalls != 0 {
		t.Error("empty input must not query")
	}

	out, err = e.Attach(context.Background(), []RelationKeys{{SubjectID: "gone", StudentID: "gone"}})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if out[0].Subject != nil || out[0].Student != nil || out[0].RecordedBy != nil {
		t.Errorf("dangling ids should yield nil summaries, got %+v", out[0])
	}
	if env.users.listByIDCalls != 1 {
		t.Errorf("no staff keys means no staff query, got %d user queries", env.users.listByIDCalls)
	}
}
