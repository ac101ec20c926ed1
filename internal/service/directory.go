package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
)

// ── user directory errors ──

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserSelfDelete     = errors.New("cannot delete yourself")
	ErrUserDeleteAdmin    = errors.New("cannot delete an admin")
	ErrUserSelfRoleChange = errors.New("cannot change your own role")
	ErrInvalidRole        = errors.New("role must be one of student, staff, admin")
)

// UserDirectory owns user records. It is the only writer of the users table.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// ResolveOrProvision returns the user for a verified identity, creating it on first contact.
	// Without an email nothing is ever created.
	ResolveOrProvision(ctx context.Context, subjectID, email string) (*model.User, error)
	Provision(ctx context.Context, req *dto.ProvisionUserRequest, callerID string) (*model.User, error)
	AssignRole(ctx context.Context, id, role, callerID string) (*model.User, error)
	Delete(ctx context.Context, id, callerID string) error
	List(ctx context.Context, req *dto.UserListRequest) ([]model.User, int64, error)
}

type userDirectory struct {
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	// first contacts for one email within this process share one insert
	group singleflight.Group
}

// NewUserDirectory creates a UserDirectory.
func NewUserDirectory(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) UserDirectory {
	return &userDirectory{users: repo.User, metrics: m, logger: logger}
}

// ────────────────────── lookups ──────────────────────

func (d *userDirectory) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		d.logger.Error("get user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (d *userDirectory) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := d.users.GetByEmail(ctx, reference.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		d.logger.Error("get user by email failed", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (d *userDirectory) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	return d.users.ListByIDs(ctx, ids)
}

// ────────────────────── ResolveOrProvision ──────────────────────

func (d *userDirectory) ResolveOrProvision(ctx context.Context, subjectID, email string) (*model.User, error) {
	email = reference.NormalizeEmail(email)

	if email == "" {
		if subjectID == "" {
			return nil, ErrUserNotFound
		}
		return d.GetByID(ctx, subjectID)
	}

	user, err := d.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		d.logger.Error("resolve user failed", zap.Error(err))
		return nil, err
	}

	v, err, _ := d.group.Do(email, func() (interface{}, error) {
		return d.provisionFirstContact(ctx, subjectID, email)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.User), nil
}

func (d *userDirectory) provisionFirstContact(ctx context.Context, subjectID, email string) (*model.User, error) {
	local := reference.LocalPart(email)
	candidate := &model.User{
		UserID: subjectID,
		Email:  email,
		Name:   displayName(local),
		Role:   inferRole(local),
	}

	stored, created, err := d.users.FindOrCreate(ctx, candidate)
	if err != nil {
		d.logger.Error("provision user failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if created {
		d.metrics.Provisioned.WithLabelValues(stored.Role).Inc()
		d.logger.Info("user provisioned on first contact",
			zap.String("user_id", stored.UserID),
			zap.String("email", stored.Email),
			zap.String("role", stored.Role),
		)
	}
	return stored, nil
}

// inferRole derives a role from an email local part: staff*, admin*, otherwise student.
func inferRole(local string) string {
	local = strings.ToLower(local)
	switch {
	case strings.HasPrefix(local, model.RoleStaff):
		return model.RoleStaff
	case strings.HasPrefix(local, model.RoleAdmin):
		return model.RoleAdmin
	default:
		return model.RoleStudent
	}
}

// displayName turns "john.doe-2" into "John Doe 2".
func displayName(local string) string {
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(words) == 0 {
		return "User"
	}
	// a Caser is stateful and cannot be shared across goroutines
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// ────────────────────── admin operations ──────────────────────

func (d *userDirectory) Provision(ctx context.Context, req *dto.ProvisionUserRequest, callerID string) (*model.User, error) {
	if !model.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	email := reference.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = displayName(reference.LocalPart(email))
	}

	stored, created, err := d.users.FindOrCreate(ctx, &model.User{
		Email: email,
		Name:  name,
		Role:  req.Role,
	})
	if err != nil {
		d.logger.Error("provision user failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if !created {
		return nil, ErrEmailExists
	}

	d.metrics.Provisioned.WithLabelValues(stored.Role).Inc()
	d.logger.Info("user provisioned",
		zap.String("user_id", stored.UserID),
		zap.String("role", stored.Role),
		zap.String("by", callerID),
	)
	return stored, nil
}

func (d *userDirectory) AssignRole(ctx context.Context, id, role, callerID string) (*model.User, error) {
	if id == callerID {
		return nil, ErrUserSelfRoleChange
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := d.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := d.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		d.logger.Error("update role failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	d.logger.Info("role changed",
		zap.String("user_id", id),
		zap.String("from", user.Role),
		zap.String("to", role),
		zap.String("by", callerID),
	)
	user.Role = role
	return user, nil
}

func (d *userDirectory) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	user, err := d.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return ErrUserDeleteAdmin
	}

	if err := d.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		d.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}

	d.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", callerID))
	return nil
}

func (d *userDirectory) List(ctx context.Context, req *dto.UserListRequest) ([]model.User, int64, error) {
	users, total, err := d.users.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		d.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}
