package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrNotAStudent a reference resolved to a user whose role is not student.
	ErrNotAStudent = errors.New("referenced user is not a student")
)

// ReferenceResolver turns human-entered references into stored entities. It never creates records.
type ReferenceResolver interface {
	ResolveStudent(ctx context.Context, ref string) (*model.User, error)
	ResolveSubject(ctx context.Context, ref string) (*model.Subject, error)
}

type referenceResolver struct {
	users    repository.UserRepository
	subjects repository.SubjectRepository
	scheme   reference.Scheme
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReferenceResolver creates a ReferenceResolver.
func NewReferenceResolver(repo *repository.Repository, scheme reference.Scheme, m *metrics.Metrics, logger *zap.Logger) ReferenceResolver {
	return &referenceResolver{
		users:    repo.User,
		subjects: repo.Subject,
		scheme:   scheme,
		metrics:  m,
		logger:   logger,
	}
}

func (r *referenceResolver) ResolveStudent(ctx context.Context, ref string) (*model.User, error) {
	for _, lookup := range r.scheme.StudentPlan(ref) {
		var (
			user *model.User
			err  error
		)
		switch lookup.Key {
		case reference.KeyID:
			user, err = r.users.GetByID(ctx, lookup.Value)
		case reference.KeyEmail:
			user, err = r.users.GetByEmail(ctx, lookup.Value)
		default:
			continue
		}
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("resolve student failed", zap.String("ref", ref), zap.Error(err))
			return nil, err
		}
	}

	r.metrics.ResolutionMisses.WithLabelValues("student").Inc()
	return nil, ErrStudentNotFound
}

func (r *referenceResolver) ResolveSubject(ctx context.Context, ref string) (*model.Subject, error) {
	for _, lookup := range r.scheme.SubjectPlan(ref) {
		var (
			subject *model.Subject
			err     error
		)
		switch lookup.Key {
		case reference.KeyID:
			subject, err = r.subjects.GetByID(ctx, lookup.Value)
		case reference.KeyCode:
			subject, err = r.subjects.GetByCode(ctx, lookup.Value)
		default:
			continue
		}
		if err == nil {
			return subject, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("resolve subject failed", zap.String("ref", ref), zap.Error(err))
			return nil, err
		}
	}

	r.metrics.ResolutionMisses.WithLabelValues("subject").Inc()
	return nil, ErrSubjectNotFound
}

// requireStudent rejects a resolved user that is not a student.
func requireStudent(user *model.User) (*model.User, error) {
	if _, err := RequireRole(user, model.RoleStudent); err != nil {
		return nil, ErrNotAStudent
	}
	return user, nil
}
