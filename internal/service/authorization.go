package service

import (
	"errors"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role for this operation")
)

// RequireRole returns user when its role is one of allowed.
func RequireRole(user *model.User, allowed ...string) (*model.User, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	for _, role := range allowed {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, ErrForbidden
}

// IsElevated reports whether user may act on records other than their own.
func IsElevated(user *model.User) bool {
	_, err := RequireRole(user, model.RoleStaff, model.RoleAdmin)
	return err == nil
}
