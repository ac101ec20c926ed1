package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// ── certificate errors ──

var (
	ErrCertificateNotFound = errors.New("certificate request not found")
	ErrCertificateDecided  = errors.New("certificate request has already been decided")
)

// CertificateService certificate requests.
type CertificateService interface {
	Request(ctx context.Context, req *dto.RequestCertificateRequest, studentID string) (*dto.CertificateResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.CertificateResponse, error)
	List(ctx context.Context, req *dto.CertificateListRequest) ([]dto.CertificateResponse, int64, error)
	Issue(ctx context.Context, id string, req *dto.IssueCertificateRequest, adminID string) (*dto.CertificateResponse, error)
	Reject(ctx context.Context, id string, req *dto.RejectCertificateRequest, adminID string) (*dto.CertificateResponse, error)
}

type certificateService struct {
	certificates repository.CertificateRepository
	enricher     Enricher
	broadcaster  Broadcaster
	logger       *zap.Logger
}

// NewCertificateService creates a CertificateService.
func NewCertificateService(repo *repository.Repository, enricher Enricher, bc Broadcaster, logger *zap.Logger) CertificateService {
	return &certificateService{certificates: repo.Certificate, enricher: enricher, broadcaster: bc, logger: logger}
}

func (s *certificateService) Request(ctx context.Context, req *dto.RequestCertificateRequest, studentID string) (*dto.CertificateResponse, error) {
	cert := &model.Certificate{
		StudentID: studentID,
		Type:      req.Type,
		Purpose:   strings.TrimSpace(req.Purpose),
		Status:    model.CertificateRequested,
	}
	if err := s.certificates.Create(ctx, cert); err != nil {
		s.logger.Error("create certificate request failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, cert)
}

func (s *certificateService) ListMine(ctx context.Context, studentID string) ([]dto.CertificateResponse, error) {
	list, err := s.certificates.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("list own certificates failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, list)
}

func (s *certificateService) List(ctx context.Context, req *dto.CertificateListRequest) ([]dto.CertificateResponse, int64, error) {
	list, total, err := s.certificates.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list certificates failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, list)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ────────────────────── Issue / Reject ──────────────────────

func (s *certificateService) Issue(ctx context.Context, id string, req *dto.IssueCertificateRequest, adminID string) (*dto.CertificateResponse, error) {
	return s.decide(ctx, id, adminID, func(cert *model.Certificate, now time.Time) {
		serial := serialNumber(cert.Type, now)
		cert.Status = model.CertificateIssued
		cert.SerialNo = &serial
		cert.DocumentURL = req.DocumentURL
		cert.Remarks = strings.TrimSpace(req.Remarks)
	})
}

func (s *certificateService) Reject(ctx context.Context, id string, req *dto.RejectCertificateRequest, adminID string) (*dto.CertificateResponse, error) {
	return s.decide(ctx, id, adminID, func(cert *model.Certificate, _ time.Time) {
		cert.Status = model.CertificateRejected
		cert.Remarks = strings.TrimSpace(req.Remarks)
	})
}

func (s *certificateService) decide(ctx context.Context, id, adminID string, apply func(*model.Certificate, time.Time)) (*dto.CertificateResponse, error) {
	cert, err := s.certificates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		s.logger.Error("get certificate failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if cert.Status != model.CertificateRequested {
		return nil, ErrCertificateDecided
	}

	now := time.Now()
	apply(cert, now)
	cert.IssuedBy = &adminID
	cert.IssuedAt = &now

	if err := s.certificates.Decide(ctx, cert); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrCertificateDecided
		}
		s.logger.Error("decide certificate failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("certificate decided",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("status", cert.Status),
		zap.String("by", adminID),
	)

	resp, err := s.toResponse(ctx, cert)
	if err != nil {
		return nil, err
	}
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Type:   EventCertificateDecided,
		UserID: cert.StudentID,
		Data:   resp,
	})
	return resp, nil
}

// serialNumber e.g. BON-2025-3F1C2A9E.
func serialNumber(certType string, now time.Time) string {
	prefix := strings.ToUpper(certType)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", prefix, now.Year(), suffix)
}

func (s *certificateService) toResponse(ctx context.Context, cert *model.Certificate) (*dto.CertificateResponse, error) {
	list, err := s.toResponses(ctx, []model.Certificate{*cert})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *certificateService) toResponses(ctx context.Context, list []model.Certificate) ([]dto.CertificateResponse, error) {
	keys := make([]RelationKeys, len(list))
	for i, c := range list {
		keys[i] = RelationKeys{StudentID: c.StudentID, RecordedBy: derefString(c.IssuedBy)}
	}
	relations, err := s.enricher.Attach(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CertificateResponse, len(list))
	for i, c := range list {
		result[i] = dto.CertificateResponse{
			ID:          c.CertificateID,
			Type:        c.Type,
			Purpose:     c.Purpose,
			Status:      c.Status,
			SerialNo:    derefString(c.SerialNo),
			DocumentURL: c.DocumentURL,
			Remarks:     c.Remarks,
			IssuedAt:    formatTimePtr(c.IssuedAt),
			CreatedAt:   formatTime(c.CreatedAt),
			Student:     relations[i].Student,
			IssuedBy:    relations[i].RecordedBy,
		}
	}
	return result, nil
}
