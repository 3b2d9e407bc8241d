package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/validation"
)

// rejectionKey stores the rejection message for the request logger.
const rejectionKey = "rejection"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// reject writes a JSON error and aborts the chain.
func reject(c *gin.Context, status int, message string) {
	c.Set(rejectionKey, message)
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

// rejectFields writes the field-level validation response.
func rejectFields(c *gin.Context, result *validation.Result) {
	c.Set(rejectionKey, result.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Errors:  result.ByField(),
	})
}

// fail maps an error from ingestion or the engine to a status code.
func fail(c *gin.Context, err error) {
	switch {
	case combination.IsValidationError(err), errors.Is(err, ingest.ErrInvalidFile):
		reject(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		reject(c, http.StatusServiceUnavailable, "The search took too long. Narrow it down with size bounds or required invoices.")
	case errors.Is(err, context.Canceled):
		reject(c, http.StatusServiceUnavailable, "The request was cancelled.")
	default:
		c.Error(err)
		reject(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
