package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// Context keys set by Authenticate.
const (
	ContextUser     = "user"
	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextIdentity = "identity"
)

// body email is only peeked from small JSON bodies
const emailPeekLimit = 64 << 10

// Authenticate verifies the caller and resolves it to a user record, provisioning on first contact.
// timeout bounds verification plus directory lookup; zero means the request context alone.
func Authenticate(verifier identity.Verifier, directory service.UserDirectory, m *metrics.Metrics, timeout time.Duration, logger *zap.Logger) gin.HandlerFunc {
	mode := string(verifier.Mode())

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		id, err := verifier.Verify(ctx, collectEvidence(c))
		if err != nil {
			m.Verifications.WithLabelValues(mode, verificationOutcome(err)).Inc()
			response.Unauthorized(c, response.CodeUnauthenticated, unauthenticatedMessage(err))
			c.Abort()
			return
		}
		m.Verifications.WithLabelValues(mode, "ok").Inc()

		user, err := directory.ResolveOrProvision(ctx, id.Subject, id.Email)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				// verified, but no email to provision from and no record under the subject
				response.Unauthorized(c, response.CodeUnauthenticated, "no user record for this identity")
				c.Abort()
				return
			}
			logger.Error("resolve caller failed", zap.String("subject", id.Subject), zap.Error(err))
			response.InternalError(c)
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.UserID)
		c.Set(ContextRole, user.Role)
		c.Set(ContextIdentity, id)

		c.Next()
	}
}

// RoleAuth admits callers whose role is one of allowedRoles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *model.User
		if v, ok := c.Get(ContextUser); ok {
			user, _ = v.(*model.User)
		}

		if _, err := service.RequireRole(user, allowedRoles...); err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
			} else {
				response.Forbidden(c, response.CodeForbidden, "insufficient role for this operation")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// ── evidence ──

func collectEvidence(c *gin.Context) identity.Evidence {
	ev := identity.Evidence{
		HeaderEmail: c.GetHeader("X-User-Email"),
		QueryEmail:  c.Query("email"),
		BodyEmail:   peekBodyEmail(c),
	}

	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			ev.Bearer = strings.TrimSpace(parts[1])
		}
	} else if t := c.Query("access_token"); t != "" {
		// browsers cannot set headers on a websocket handshake
		ev.Bearer = t
	}
	return ev
}

// peekBodyEmail reads the "email" field of a JSON body and restores the body for the handler.
// Bodies of unknown length are peeked up to emailPeekLimit; the unread rest stays in place.
func peekBodyEmail(c *gin.Context) string {
	req := c.Request
	if req.Body == nil || req.ContentLength == 0 || req.ContentLength > emailPeekLimit {
		return ""
	}
	if !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}

	body := req.Body
	raw, err := io.ReadAll(io.LimitReader(body, emailPeekLimit))
	req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
	if err != nil {
		return ""
	}

	var probe struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &probe) != nil {
		return ""
	}
	return probe.Email
}

// readCloser replays peeked bytes ahead of the original body and closes the original.
type readCloser struct {
	io.Reader
	io.Closer
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, identity.ErrMissingCredential):
		return "missing"
	case errors.Is(err, identity.ErrCredentialExpired):
		return "expired"
	case errors.Is(err, identity.ErrInvalidCredential):
		return "invalid"
	default:
		return "error"
	}
}

func unauthenticatedMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrMissingCredential):
		return "missing bearer credential"
	case errors.Is(err, identity.ErrCredentialExpired):
		return "credential expired"
	default:
		return "invalid credential"
	}
}
