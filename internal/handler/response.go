package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, apiErr APIError) {
	var (
		ve *domain.ValidationError
		ce *domain.ContextError
		te *domain.TransportError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, APIError{Code: "VALIDATION_FAILED", Message: ve.Message, Details: ve}
	case errors.As(err, &ce):
		return http.StatusBadRequest, APIError{Code: "MISSING_CONTEXT", Message: ce.Error(), Details: gin.H{"field": ce.Field}}
	case errors.As(err, &te):
		if te.Status >= 400 && te.Status < 500 {
			return http.StatusConflict, APIError{Code: "BACKEND_REJECTED", Message: te.Error()}
		}
		return http.StatusBadGateway, APIError{Code: "BACKEND_UNAVAILABLE", Message: te.Error()}
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return http.StatusNotFound, APIError{Code: "WORKSPACE_NOT_FOUND", Message: "workspace not found"}
	case errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict, APIError{Code: "SUBMIT_IN_FLIGHT", Message: "a submission is already in progress for this workspace"}
	case errors.Is(err, domain.ErrStaleFetch):
		return http.StatusConflict, APIError{Code: "STALE_FETCH", Message: "workspace changed while assignments were loading; reload again"}
	case errors.Is(err, domain.ErrRowOutOfRange):
		return http.StatusBadRequest, APIError{Code: "ROW_OUT_OF_RANGE", Message: err.Error()}
	case errors.Is(err, domain.ErrUnknownReportType):
		return http.StatusBadRequest, APIError{Code: "UNKNOWN_REPORT_TYPE", Message: "unknown report type"}
	case errors.Is(err, domain.ErrInvalidBatchDate):
		return http.StatusBadRequest, APIError{Code: "INVALID_BATCH_DATE", Message: "batch date must be YYYY-MM-DD"}
	default:
		return http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, apiErr := MapDomainError(err)
	if status >= 500 {
		middleware.GetLogger(c).Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, APIResponse{Success: false, Error: &apiErr})
}
