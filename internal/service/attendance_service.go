package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
)

// ErrInvalidDate a date that does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// AttendanceService class attendance.
type AttendanceService interface {
	Record(ctx context.Context, req *dto.RecordAttendanceRequest, callerID string) (*dto.BatchResponse, error)
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	Mine(ctx context.Context, studentID string) (*dto.MyAttendanceResponse, error)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	resolver   ReferenceResolver
	enricher   Enricher
	logger     *zap.Logger
}

// NewAttendanceService creates an AttendanceService.
func NewAttendanceService(repo *repository.Repository, resolver ReferenceResolver, enricher Enricher, logger *zap.Logger) AttendanceService {
	return &attendanceService{attendance: repo.Attendance, resolver: resolver, enricher: enricher, logger: logger}
}

// ────────────────────── Record ──────────────────────

func (s *attendanceService) Record(ctx context.Context, req *dto.RecordAttendanceRequest, callerID string) (*dto.BatchResponse, error) {
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	subject, err := s.resolver.ResolveSubject(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	resp := &dto.BatchResponse{Results: make([]dto.RowResult, 0, len(req.Entries))}
	for i, entry := range req.Entries {
		result := dto.RowResult{Row: i + 1, Student: entry.Student}

		student, err := s.resolver.ResolveStudent(ctx, entry.Student)
		if err == nil {
			student, err = requireStudent(student)
		}
		if err != nil {
			if !isRowError(err) {
				return nil, err
			}
			result.Reason, result.Error = rowReason(err), err.Error()
			resp.Failed++
			resp.Results = append(resp.Results, result)
			continue
		}

		rec := &model.Attendance{
			StudentID:  student.UserID,
			SubjectID:  subject.SubjectID,
			Date:       day,
			Status:     entry.Status,
			RecordedBy: callerID,
		}
		if err := s.attendance.Upsert(ctx, rec); err != nil {
			s.logger.Error("record attendance failed", zap.Int("row", i+1), zap.Error(err))
			return nil, err
		}
		result.ID = rec.AttendanceID
		resp.Stored++
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("attendance recorded",
		zap.String("subject_id", subject.SubjectID),
		zap.String("date", req.Date),
		zap.Int("stored", resp.Stored),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	var filter repository.AttendanceFilter
	if req.Subject != "" {
		subject, err := s.resolver.ResolveSubject(ctx, req.Subject)
		if err != nil {
			return nil, 0, err
		}
		filter.SubjectID = subject.SubjectID
	}
	if req.Student != "" {
		student, err := s.resolver.ResolveStudent(ctx, req.Student)
		if err != nil {
			return nil, 0, err
		}
		filter.StudentID = student.UserID
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filter.To = to
	}

	records, total, err := s.attendance.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, records)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ────────────────────── Mine ──────────────────────

func (s *attendanceService) Mine(ctx context.Context, studentID string) (*dto.MyAttendanceResponse, error) {
	records, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("list own attendance failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	rows, err := s.toResponses(ctx, records)
	if err != nil {
		return nil, err
	}
	return &dto.MyAttendanceResponse{Records: rows, Summary: summarize(records, rows)}, nil
}

// summarize builds per-subject totals. Late counts as attended.
func summarize(records []model.Attendance, rows []dto.AttendanceResponse) []dto.AttendanceSummary {
	bySubject := make(map[string]*dto.AttendanceSummary)
	var order []string
	for i, rec := range records {
		sum, ok := bySubject[rec.SubjectID]
		if !ok {
			sum = &dto.AttendanceSummary{Subject: rows[i].Subject}
			bySubject[rec.SubjectID] = sum
			order = append(order, rec.SubjectID)
		}
		sum.Total++
		switch rec.Status {
		case model.AttendancePresent:
			sum.Present++
		case model.AttendanceLate:
			sum.Late++
		default:
			sum.Absent++
		}
	}

	result := make([]dto.AttendanceSummary, 0, len(order))
	for _, id := range order {
		sum := bySubject[id]
		sum.Percentage = math.Round(float64(sum.Present+sum.Late)*10000/float64(sum.Total)) / 100
		result = append(result, *sum)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return summaryCode(result[i]) < summaryCode(result[j])
	})
	return result
}

func summaryCode(s dto.AttendanceSummary) string {
	if s.Subject == nil {
		return ""
	}
	return s.Subject.Code
}

func (s *attendanceService) toResponses(ctx context.Context, records []model.Attendance) ([]dto.AttendanceResponse, error) {
	keys := make([]RelationKeys, len(records))
	for i, r := range records {
		keys[i] = RelationKeys{SubjectID: r.SubjectID, StudentID: r.StudentID, RecordedBy: r.RecordedBy}
	}
	relations, err := s.enricher.Attach(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AttendanceResponse, len(records))
	for i, r := range records {
		result[i] = dto.AttendanceResponse{
			ID:        r.AttendanceID,
			Date:      formatDate(r.Date),
			Status:    r.Status,
			Relations: relations[i],
		}
	}
	return result, nil
}
