package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/fmcsa"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, fmcsa.ErrCarrierNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDriver),
		errors.Is(err, service.ErrInvalidLoadID),
		errors.Is(err, service.ErrInvalidAccountID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidEquipmentType),
		errors.Is(err, service.ErrInvalidUrgency),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrInvalidRoute),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidCompanyName),
		errors.Is(err, service.ErrInvalidWarehouseRequest),
		errors.Is(err, service.ErrInvalidMCNumber),
		errors.Is(err, fmcsa.ErrInvalidIdentifier):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrLoadNotPending),
		errors.Is(err, service.ErrLoadNotOffered),
		errors.Is(err, service.ErrDriverHasActiveLoad),
		errors.Is(err, service.ErrDriverAlreadyRegistered),
		errors.Is(err, service.ErrAccountBusy),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrStaleState):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotAssignedToLoad):
		return http.StatusForbidden

	// Upstream quota and failures
	case errors.Is(err, fmcsa.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, fmcsa.ErrUpstream):
		return http.StatusBadGateway

	// Service unavailable
	case errors.Is(err, service.ErrNoDriverAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
