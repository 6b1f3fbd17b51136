package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/donat3/ledger-core/internal/api/shared/errors"
	"github.com/donat3/ledger-core/internal/logger"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error apierrors.APIError `json:"error"`
}

// statusForCode maps API error codes to HTTP statuses
func statusForCode(code apierrors.ErrorCode) int {
	switch code {
	case apierrors.ErrCodeBadRequest, apierrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case apierrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apierrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apierrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apierrors.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends the response for an executor error. Server-side codes
// are logged and the details withheld from the client.
func respondError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.NewInternalError("Internal server error")
	}

	status := statusForCode(apiErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		apiErr = &apierrors.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}

	c.JSON(status, errorResponse{Error: *apiErr})
}

// respondValidationError sends a 400 Bad Request with validation details
func respondValidationError(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: *apierrors.NewValidationError(details)})
}
