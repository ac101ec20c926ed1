package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
)

// ErrSubjectCodeSectionExists another subject already uses the code in that section.
var ErrSubjectCodeSectionExists = errors.New("subject code already exists for this section")

// SubjectService subject catalogue.
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	// Get accepts an id or a code, with or without the institution prefix.
	Get(ctx context.Context, ref string) (*dto.SubjectResponse, error)
	List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string) error
}

type subjectService struct {
	subjects repository.SubjectRepository
	resolver ReferenceResolver
	scheme   reference.Scheme
	logger   *zap.Logger
}

// NewSubjectService creates a SubjectService.
func NewSubjectService(repo *repository.Repository, resolver ReferenceResolver, scheme reference.Scheme, logger *zap.Logger) SubjectService {
	return &subjectService{subjects: repo.Subject, resolver: resolver, scheme: scheme, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	subject := &model.Subject{
		Code:    s.normalizeCode(req.Code),
		Name:    strings.TrimSpace(req.Name),
		Section: strings.TrimSpace(req.Section),
	}
	if err := s.ensureUnique(ctx, subject); err != nil {
		return nil, err
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		s.logger.Error("create subject failed", zap.String("code", subject.Code), zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *subjectService) Get(ctx context.Context, ref string) (*dto.SubjectResponse, error) {
	subject, err := s.resolver.ResolveSubject(ctx, ref)
	if err != nil {
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, int64, error) {
	subjects, total, err := s.subjects.List(ctx, s.normalizeCode(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list subjects failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		subject.Code = s.normalizeCode(*req.Code)
	}
	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Section != nil {
		subject.Section = strings.TrimSpace(*req.Section)
	}
	if err := s.ensureUnique(ctx, subject); err != nil {
		return nil, err
	}

	if err := s.subjects.Update(ctx, subject); err != nil {
		s.logger.Error("update subject failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id string) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		s.logger.Error("delete subject failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *subjectService) getByID(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("get subject failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

// normalizeCode stores codes without the institution prefix so "SUBJ-CS101" and "CS101" match.
func (s *subjectService) normalizeCode(code string) string {
	return strings.TrimSpace(s.scheme.StripSubjectPrefix(strings.TrimSpace(code)))
}

// ensureUnique rejects a second subject with the same code and section.
func (s *subjectService) ensureUnique(ctx context.Context, subject *model.Subject) error {
	existing, _, err := s.subjects.List(ctx, subject.Code, 0, 100)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.SubjectID != subject.SubjectID && other.Code == subject.Code && other.Section == subject.Section {
			return ErrSubjectCodeSectionExists
		}
	}
	return nil
}

func toSubjectResponse(s *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:        s.SubjectID,
		Code:      s.Code,
		Name:      s.Name,
		Section:   s.Section,
		CreatedAt: formatTime(s.CreatedAt),
	}
}
