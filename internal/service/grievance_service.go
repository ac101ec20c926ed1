package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// ── grievance errors ──

var (
	ErrGrievanceNotFound = errors.New("grievance not found")
	ErrGrievanceResolved = errors.New("grievance is already resolved")
)

// GrievanceService student grievances.
type GrievanceService interface {
	Create(ctx context.Context, req *dto.CreateGrievanceRequest, studentID string) (*dto.GrievanceResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.GrievanceResponse, error)
	List(ctx context.Context, req *dto.GrievanceListRequest) ([]dto.GrievanceResponse, int64, error)
	Respond(ctx context.Context, id string, req *dto.RespondGrievanceRequest, responderID string) (*dto.GrievanceResponse, error)
}

type grievanceService struct {
	grievances  repository.GrievanceRepository
	enricher    Enricher
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewGrievanceService creates a GrievanceService.
func NewGrievanceService(repo *repository.Repository, enricher Enricher, bc Broadcaster, logger *zap.Logger) GrievanceService {
	return &grievanceService{grievances: repo.Grievance, enricher: enricher, broadcaster: bc, logger: logger}
}

func (s *grievanceService) Create(ctx context.Context, req *dto.CreateGrievanceRequest, studentID string) (*dto.GrievanceResponse, error) {
	g := &model.Grievance{
		StudentID:   studentID,
		Category:    req.Category,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      model.GrievanceOpen,
	}
	if err := s.grievances.Create(ctx, g); err != nil {
		s.logger.Error("create grievance failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp, err := s.toResponse(ctx, g)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:  EventGrievanceCreated,
		Roles: []string{model.RoleStaff, model.RoleAdmin},
		Data:  resp,
	})
	return resp, nil
}

func (s *grievanceService) ListMine(ctx context.Context, studentID string) ([]dto.GrievanceResponse, error) {
	list, err := s.grievances.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("list own grievances failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, list)
}

func (s *grievanceService) List(ctx context.Context, req *dto.GrievanceListRequest) ([]dto.GrievanceResponse, int64, error) {
	list, total, err := s.grievances.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list grievances failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, list)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *grievanceService) Respond(ctx context.Context, id string, req *dto.RespondGrievanceRequest, responderID string) (*dto.GrievanceResponse, error) {
	g, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrievanceNotFound
		}
		s.logger.Error("get grievance failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if g.Status == model.GrievanceResolved {
		return nil, ErrGrievanceResolved
	}

	now := time.Now()
	g.Status = req.Status
	g.Response = strings.TrimSpace(req.Response)
	g.RespondedBy = &responderID
	g.RespondedAt = &now

	if err := s.grievances.Update(ctx, g); err != nil {
		s.logger.Error("respond grievance failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp, err := s.toResponse(ctx, g)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:   EventGrievanceUpdated,
		UserID: g.StudentID,
		Data:   resp,
	})
	return resp, nil
}

func (s *grievanceService) toResponse(ctx context.Context, g *model.Grievance) (*dto.GrievanceResponse, error) {
	list, err := s.toResponses(ctx, []model.Grievance{*g})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *grievanceService) toResponses(ctx context.Context, list []model.Grievance) ([]dto.GrievanceResponse, error) {
	keys := make([]RelationKeys, len(list))
	for i, g := range list {
		keys[i] = RelationKeys{StudentID: g.StudentID, RecordedBy: derefString(g.RespondedBy)}
	}
	relations, err := s.enricher.Attach(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]dto.GrievanceResponse, len(list))
	for i, g := range list {
		result[i] = dto.GrievanceResponse{
			ID:          g.GrievanceID,
			Category:    g.Category,
			Title:       g.Title,
			Description: g.Description,
			Status:      g.Status,
			Response:    g.Response,
			RespondedAt: formatTimePtr(g.RespondedAt),
			CreatedAt:   formatTime(g.CreatedAt),
			Student:     relations[i].Student,
			RespondedBy: relations[i].RecordedBy,
		}
	}
	return result, nil
}
