package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/mailer"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// ── leave errors ──

var (
	ErrLeaveNotFound        = errors.New("leave request not found")
	ErrLeaveAlreadyReviewed = errors.New("leave request has already been reviewed")
	ErrInvalidDateRange     = errors.New("fromDate must not be after toDate")
)

// Realtime event types.
const (
	EventLeaveCreated       = "leave.created"
	EventLeaveReviewed      = "leave.reviewed"
	EventGrievanceCreated   = "grievance.created"
	EventGrievanceUpdated   = "grievance.updated"
	EventCertificateDecided = "certificate.decided"
)

const notifyTimeout = 30 * time.Second

// LeaveService student leave requests.
type LeaveService interface {
	Apply(ctx context.Context, req *dto.CreateLeaveRequest, studentID string) (*dto.LeaveResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.LeaveResponse, error)
	// CalendarMine renders the student's approved leaves as an iCalendar document.
	CalendarMine(ctx context.Context, studentID string) ([]byte, error)
	List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	Review(ctx context.Context, id string, req *dto.ReviewLeaveRequest, reviewerID string) (*dto.LeaveResponse, error)
}

type leaveService struct {
	leaves      repository.LeaveRepository
	users       repository.UserRepository
	enricher    Enricher
	broadcaster Broadcaster
	mailer      mailer.Mailer
	logger      *zap.Logger
	// async runs deferred work; tests replace it to run inline
	async func(func())
}

// NewLeaveService creates a LeaveService.
func NewLeaveService(repo *repository.Repository, enricher Enricher, bc Broadcaster, m mailer.Mailer, logger *zap.Logger) LeaveService {
	return &leaveService{
		leaves:      repo.Leave,
		users:       repo.User,
		enricher:    enricher,
		broadcaster: bc,
		mailer:      m,
		logger:      logger,
		async:       func(fn func()) { go fn() },
	}
}

// ────────────────────── Apply ──────────────────────

func (s *leaveService) Apply(ctx context.Context, req *dto.CreateLeaveRequest, studentID string) (*dto.LeaveResponse, error) {
	from, err := parseDate(req.FromDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := parseDate(req.ToDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	leave := &model.Leave{
		StudentID: studentID,
		FromDate:  from,
		ToDate:    to,
		Reason:    strings.TrimSpace(req.Reason),
		Status:    model.LeavePending,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		s.logger.Error("create leave failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp, err := s.toResponse(ctx, leave)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:  EventLeaveCreated,
		Roles: []string{model.RoleStaff, model.RoleAdmin},
		Data:  resp,
	})
	return resp, nil
}

// ────────────────────── ListMine / CalendarMine ──────────────────────

func (s *leaveService) ListMine(ctx context.Context, studentID string) ([]dto.LeaveResponse, error) {
	leaves, err := s.leaves.ListByStudent(ctx, studentID, "")
	if err != nil {
		s.logger.Error("list own leaves failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, leaves)
}

func (s *leaveService) CalendarMine(ctx context.Context, studentID string) ([]byte, error) {
	leaves, err := s.leaves.ListByStudent(ctx, studentID, model.LeaveApproved)
	if err != nil {
		s.logger.Error("list approved leaves failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//College Connect//Leaves//EN")
	cal.SetXWRCalName("Approved leave")

	for _, l := range leaves {
		ev := cal.AddEvent(l.LeaveID + "@college-connect")
		ev.SetDtStampTime(time.Now().UTC())
		ev.SetCreatedTime(l.CreatedAt)
		if l.ReviewedAt != nil {
			ev.SetModifiedAt(*l.ReviewedAt)
		}
		ev.SetAllDayStartAt(l.FromDate)
		// DTEND is exclusive for all-day events
		ev.SetAllDayEndAt(l.ToDate.AddDate(0, 0, 1))
		ev.SetSummary("Leave")
		ev.SetDescription(l.Reason)
		ev.SetStatus(ics.ObjectStatusConfirmed)
	}

	return []byte(cal.Serialize()), nil
}

// ────────────────────── List ──────────────────────

func (s *leaveService) List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	leaves, total, err := s.leaves.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, leaves)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ────────────────────── Review ──────────────────────

func (s *leaveService) Review(ctx context.Context, id string, req *dto.ReviewLeaveRequest, reviewerID string) (*dto.LeaveResponse, error) {
	leave, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("get leave failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if leave.Status != model.LeavePending {
		return nil, ErrLeaveAlreadyReviewed
	}

	now := time.Now()
	leave.Status = req.Decision
	leave.ReviewedBy = &reviewerID
	leave.ReviewNote = strings.TrimSpace(req.Note)
	leave.ReviewedAt = &now

	if err := s.leaves.Review(ctx, leave); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLeaveAlreadyReviewed
		}
		s.logger.Error("review leave failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp, err := s.toResponse(ctx, leave)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:   EventLeaveReviewed,
		UserID: leave.StudentID,
		Data:   resp,
	})

	// best effort: the review is committed whether or not the mail goes out
	detached := context.WithoutCancel(ctx)
	snapshot := *leave
	s.async(func() { s.notifyReviewed(detached, &snapshot) })

	return resp, nil
}

func (s *leaveService) notifyReviewed(ctx context.Context, leave *model.Leave) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	student, err := s.users.GetByID(ctx, leave.StudentID)
	if err != nil {
		s.logger.Warn("leave notification skipped, student not loaded",
			zap.String("leave_id", leave.LeaveID), zap.Error(err))
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nYour leave request for %s to %s has been %s.\n",
		student.Name, formatDate(leave.FromDate), formatDate(leave.ToDate), leave.Status)
	if leave.ReviewNote != "" {
		body += "\nNote: " + leave.ReviewNote + "\n"
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      student.Email,
		Subject: "Leave request " + leave.Status,
		Body:    body,
	})
	if err != nil {
		s.logger.Warn("leave notification failed",
			zap.String("leave_id", leave.LeaveID), zap.String("to", student.Email), zap.Error(err))
	}
}

// ── helpers ──

func (s *leaveService) toResponse(ctx context.Context, leave *model.Leave) (*dto.LeaveResponse, error) {
	list, err := s.toResponses(ctx, []model.Leave{*leave})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *leaveService) toResponses(ctx context.Context, leaves []model.Leave) ([]dto.LeaveResponse, error) {
	keys := make([]RelationKeys, len(leaves))
	for i, l := range leaves {
		keys[i] = RelationKeys{StudentID: l.StudentID, RecordedBy: derefString(l.ReviewedBy)}
	}
	relations, err := s.enricher.Attach(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]dto.LeaveResponse, len(leaves))
	for i, l := range leaves {
		result[i] = dto.LeaveResponse{
			ID:         l.LeaveID,
			FromDate:   formatDate(l.FromDate),
			ToDate:     formatDate(l.ToDate),
			Reason:     l.Reason,
			Status:     l.Status,
			ReviewNote: l.ReviewNote,
			ReviewedAt: formatTimePtr(l.ReviewedAt),
			CreatedAt:  formatTime(l.CreatedAt),
			Student:    relations[i].Student,
			ReviewedBy: relations[i].RecordedBy,
		}
	}
	return result, nil
}
