package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// SubjectHandler subject catalogue.
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler creates a SubjectHandler.
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// ListSubjects GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var req dto.SubjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	subjects, total, err := h.subjectSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, subjects, total, req.GetPage(), req.GetPageSize())
}

// GetSubject GET /api/v1/subjects/:ref
// ref is an id or a code, with or without the institution prefix.
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectSvc.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, subject)
}

// CreateSubject POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subject, err := h.subjectSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.Created(c, subject)
}

// UpdateSubject PUT /api/v1/subjects/:ref
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subject, err := h.subjectSvc.Update(c.Request.Context(), c.Param("ref"), &req)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, subject)
}

// DeleteSubject DELETE /api/v1/subjects/:ref
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("ref")); err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleSubjectError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSubjectCodeSectionExists) {
		response.Conflict(c, response.CodeConflict, err.Error())
		return
	}
	if !handleReferenceError(c, err) {
		response.InternalError(c)
	}
}
