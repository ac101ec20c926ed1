package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// MustGetUser returns the caller resolved by the auth middleware.
// On false a 401 has already been written and the handler should return.
func MustGetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return nil, false
	}
	user, ok := v.(*model.User)
	if !ok || user == nil {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return nil, false
	}
	return user, true
}

// MustGetUserID returns the caller's user id.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return "", false
	}
	return s, true
}

// getIdentity returns the verified identity, if the middleware recorded one.
func getIdentity(c *gin.Context) (identity.Identity, bool) {
	v, exists := c.Get("identity")
	if !exists {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
