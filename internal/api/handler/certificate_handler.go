package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// CertificateHandler certificate requests.
type CertificateHandler struct {
	certSvc service.CertificateService
}

// NewCertificateHandler creates a CertificateHandler.
func NewCertificateHandler(certSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certSvc: certSvc}
}

// RequestCertificate POST /api/v1/certificates
func (h *CertificateHandler) RequestCertificate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RequestCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cert, err := h.certSvc.Request(c.Request.Context(), &req, userID)
	if err != nil {
		handleCertificateError(c, err)
		return
	}
	response.Created(c, cert)
}

// MyCertificates GET /api/v1/certificates/me
func (h *CertificateHandler) MyCertificates(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.certSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleCertificateError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListCertificates GET /api/v1/certificates
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	var req dto.CertificateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.certSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleCertificateError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// IssueCertificate PUT /api/v1/certificates/:id/issue
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.IssueCertificateRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	cert, err := h.certSvc.Issue(c.Request.Context(), c.Param("id"), &req, adminID)
	if err != nil {
		handleCertificateError(c, err)
		return
	}
	response.OK(c, cert)
}

// RejectCertificate PUT /api/v1/certificates/:id/reject
func (h *CertificateHandler) RejectCertificate(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cert, err := h.certSvc.Reject(c.Request.Context(), c.Param("id"), &req, adminID)
	if err != nil {
		handleCertificateError(c, err)
		return
	}
	response.OK(c, cert)
}

func handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCertificateNotFound):
		response.NotFound(c, response.CodeRecordNotFound, err.Error())
	case errors.Is(err, service.ErrCertificateDecided):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		if !handleReferenceError(c, err) {
			response.InternalError(c)
		}
	}
}
