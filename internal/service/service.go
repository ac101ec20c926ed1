package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/mailer"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// Broadcaster delivers realtime events to connected clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev realtime.Event)
}

// Deps infrastructure shared by the services.
type Deps struct {
	Broadcaster Broadcaster
	Mailer      mailer.Mailer
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Service aggregate entry point for every service.
type Service struct {
	Directory   UserDirectory
	Resolver    ReferenceResolver
	Enricher    Enricher
	User        UserService
	Subject     SubjectService
	Mark        MarkService
	Attendance  AttendanceService
	Leave       LeaveService
	Grievance   GrievanceService
	Certificate CertificateService
}

// NewService wires every service over one repository aggregate.
func NewService(cfg *config.Config, repo *repository.Repository, deps Deps) *Service {
	scheme := reference.NewScheme(cfg.Campus.EmailDomain, cfg.Campus.SubjectPrefix)
	logger := deps.Logger

	directory := NewUserDirectory(repo, deps.Metrics, logger)
	resolver := NewReferenceResolver(repo, scheme, deps.Metrics, logger)
	enricher := NewEnricher(repo, scheme, logger)

	return &Service{
		Directory:   directory,
		Resolver:    resolver,
		Enricher:    enricher,
		User:        NewUserService(directory, scheme),
		Subject:     NewSubjectService(repo, resolver, scheme, logger),
		Mark:        NewMarkService(repo, resolver, enricher, logger),
		Attendance:  NewAttendanceService(repo, resolver, enricher, logger),
		Leave:       NewLeaveService(repo, enricher, deps.Broadcaster, deps.Mailer, logger),
		Grievance:   NewGrievanceService(repo, enricher, deps.Broadcaster, logger),
		Certificate: NewCertificateService(repo, enricher, deps.Broadcaster, logger),
	}
}

// ── formatting helpers ──

func formatDate(t time.Time) string {
	return t.Format(dto.DateLayout)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseDate parses a wire date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dto.DateLayout, s, time.UTC)
}
