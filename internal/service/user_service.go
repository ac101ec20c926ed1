package service

import (
	"context"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
)

// UserService presents directory records to the API.
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Provision(ctx context.Context, req *dto.ProvisionUserRequest, callerID string) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	ToResponse(user *model.User) *dto.UserResponse
}

type userService struct {
	directory UserDirectory
	scheme    reference.Scheme
}

// NewUserService creates a UserService.
func NewUserService(directory UserDirectory, scheme reference.Scheme) UserService {
	return &userService{directory: directory, scheme: scheme}
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.directory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ToResponse(user), nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.directory.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *s.ToResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Provision(ctx context.Context, req *dto.ProvisionUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.directory.Provision(ctx, req, callerID)
	if err != nil {
		return nil, err
	}
	return s.ToResponse(user), nil
}

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.directory.AssignRole(ctx, id, req.Role, callerID)
	if err != nil {
		return nil, err
	}
	return s.ToResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	return s.directory.Delete(ctx, id, callerID)
}

func (s *userService) ToResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		RollNumber: s.scheme.EmailToRoll(user.Email),
		CreatedAt:  formatTime(user.CreatedAt),
	}
}
