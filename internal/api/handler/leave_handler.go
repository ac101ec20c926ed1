package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// LeaveHandler leave requests.
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler creates a LeaveHandler.
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// ApplyLeave POST /api/v1/leaves
func (h *LeaveHandler) ApplyLeave(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	leave, err := h.leaveSvc.Apply(c.Request.Context(), &req, userID)
	if err != nil {
		handleLeaveError(c, err)
		return
	}
	response.Created(c, leave)
}

// MyLeaves GET /api/v1/leaves/me
func (h *LeaveHandler) MyLeaves(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	leaves, err := h.leaveSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleLeaveError(c, err)
		return
	}
	response.OK(c, gin.H{"list": leaves})
}

// MyCalendar GET /api/v1/leaves/me.ics
func (h *LeaveHandler) MyCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.leaveSvc.CalendarMine(c.Request.Context(), userID)
	if err != nil {
		handleLeaveError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="leaves.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// ListLeaves GET /api/v1/leaves
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	leaves, total, err := h.leaveSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleLeaveError(c, err)
		return
	}
	response.OKPage(c, leaves, total, req.GetPage(), req.GetPageSize())
}

// ReviewLeave PUT /api/v1/leaves/:id/review
func (h *LeaveHandler) ReviewLeave(c *gin.Context) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	leave, err := h.leaveSvc.Review(c.Request.Context(), c.Param("id"), &req, reviewerID)
	if err != nil {
		handleLeaveError(c, err)
		return
	}
	response.OK(c, leave)
}

func handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, response.CodeRecordNotFound, err.Error())
	case errors.Is(err, service.ErrLeaveAlreadyReviewed):
		response.Conflict(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, response.CodeDomainValidation, err.Error())
	default:
		if !handleReferenceError(c, err) {
			response.InternalError(c)
		}
	}
}
