package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MarkHandler assessment marks.
type MarkHandler struct {
	markSvc service.MarkService
}

// NewMarkHandler creates a MarkHandler.
func NewMarkHandler(markSvc service.MarkService) *MarkHandler {
	return &MarkHandler{markSvc: markSvc}
}

// RecordMark POST /api/v1/marks
func (h *MarkHandler) RecordMark(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RecordMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mark, err := h.markSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		handleMarkError(c, err)
		return
	}
	response.OK(c, mark)
}

// RecordBulk POST /api/v1/marks/bulk
// Rows whose student does not resolve are reported, the rest are stored.
func (h *MarkHandler) RecordBulk(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.markSvc.RecordBulk(c.Request.Context(), &req, callerID)
	if err != nil {
		handleMarkError(c, err)
		return
	}
	response.OK(c, result)
}

// ListMarks GET /api/v1/marks
func (h *MarkHandler) ListMarks(c *gin.Context) {
	var req dto.MarkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	marks, total, err := h.markSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleMarkError(c, err)
		return
	}
	response.OKPage(c, marks, total, req.GetPage(), req.GetPageSize())
}

// MyMarks GET /api/v1/marks/me
func (h *MarkHandler) MyMarks(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	marks, err := h.markSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleMarkError(c, err)
		return
	}
	response.OK(c, gin.H{"list": marks})
}

// UpdateMark PUT /api/v1/marks/:id
func (h *MarkHandler) UpdateMark(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mark, err := h.markSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleMarkError(c, err)
		return
	}
	response.OK(c, mark)
}

// DeleteMark DELETE /api/v1/marks/:id
func (h *MarkHandler) DeleteMark(c *gin.Context) {
	if err := h.markSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleMarkError(c, err)
		return
	}
	response.OK(c, nil)
}

// ExportMarks GET /api/v1/marks/export
func (h *MarkHandler) ExportMarks(c *gin.Context) {
	var req dto.MarkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	buf, filename, err := h.markSvc.Export(c.Request.Context(), &req)
	if err != nil {
		handleMarkError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func handleMarkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMarkNotFound):
		response.NotFound(c, response.CodeRecordNotFound, err.Error())
	case errors.Is(err, service.ErrScoreOutOfRange):
		response.BadRequest(c, response.CodeDomainValidation, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		if !handleReferenceError(c, err) {
			response.InternalError(c)
		}
	}
}
