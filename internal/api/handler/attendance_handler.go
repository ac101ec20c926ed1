package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// AttendanceHandler per-day attendance.
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler.
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// RecordAttendance POST /api/v1/attendance
func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.attendanceSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListAttendance GET /api/v1/attendance
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	records, total, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// MyAttendance GET /api/v1/attendance/me
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.Mine(c.Request.Context(), userID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

func handleAttendanceError(c *gin.Context, err error) {
	if !handleReferenceError(c, err) {
		response.InternalError(c)
	}
}
