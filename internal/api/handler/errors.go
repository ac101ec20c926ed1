package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/response"
)

// handleReferenceError writes the response for reference and shared errors.
// It reports false when err is none of them.
func handleReferenceError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, response.CodeStudentNotFound, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, response.CodeSubjectNotFound, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, service.ErrNotAStudent):
		response.BadRequest(c, response.CodeDomainValidation, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "invalid request parameters", err.Error())
}
