package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// RealtimeHandler websocket upgrade.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect GET /ws
// The connection receives events addressed to the caller's id or role.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	user, ok := MustGetUser(c)
	if !ok {
		return
	}
	h.hub.Serve(c.Writer, c.Request, user.UserID, user.Role)
}
