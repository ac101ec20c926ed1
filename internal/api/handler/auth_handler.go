package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// AuthHandler identity endpoints. Tokens are issued by the identity provider, never here.
type AuthHandler struct {
	userSvc service.UserService
	mode    identity.Mode
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(userSvc service.UserService, mode identity.Mode) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, mode: mode}
}

// Me returns the caller as resolved by the directory.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}

	resp := dto.MeResponse{
		User: *h.userSvc.ToResponse(user),
		Mode: string(h.mode),
	}
	if id, ok := getIdentity(c); ok {
		resp.Placeholder = id.Placeholder
	}

	response.OK(c, resp)
}
