package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/pkg/response"
)

// writeError converts domain errors to HTTP responses
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err), domain.IsStateError(err):
		response.Conflict(c, err.Error())
	case domain.IsAuthenticityError(err):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c)
	}
}
