package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// GrievanceHandler student grievances.
type GrievanceHandler struct {
	grievanceSvc service.GrievanceService
}

// NewGrievanceHandler creates a GrievanceHandler.
func NewGrievanceHandler(grievanceSvc service.GrievanceService) *GrievanceHandler {
	return &GrievanceHandler{grievanceSvc: grievanceSvc}
}

// CreateGrievance POST /api/v1/grievances
func (h *GrievanceHandler) CreateGrievance(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	g, err := h.grievanceSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleGrievanceError(c, err)
		return
	}
	response.Created(c, g)
}

// MyGrievances GET /api/v1/grievances/me
func (h *GrievanceHandler) MyGrievances(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.grievanceSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleGrievanceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListGrievances GET /api/v1/grievances
func (h *GrievanceHandler) ListGrievances(c *gin.Context) {
	var req dto.GrievanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.grievanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleGrievanceError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// RespondGrievance PUT /api/v1/grievances/:id/respond
func (h *GrievanceHandler) RespondGrievance(c *gin.Context) {
	responderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RespondGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	g, err := h.grievanceSvc.Respond(c.Request.Context(), c.Param("id"), &req, responderID)
	if err != nil {
		handleGrievanceError(c, err)
		return
	}
	response.OK(c, g)
}

func handleGrievanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGrievanceNotFound):
		response.NotFound(c, response.CodeRecordNotFound, err.Error())
	case errors.Is(err, service.ErrGrievanceResolved):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		if !handleReferenceError(c, err) {
			response.InternalError(c)
		}
	}
}
