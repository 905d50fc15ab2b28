// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError is the error part of the envelope
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper writes envelopes
type ResponseHelper struct {
	// Verbose adds the wrapped error chain to Details
	Verbose bool
}

// NewResponseHelper creates a response helper
func NewResponseHelper(verbose bool) *ResponseHelper {
	return &ResponseHelper{Verbose: verbose}
}

// Success writes a 200 response
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusOK, data, message)
}

// Created writes a 201 response
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusCreated, data, message)
}

func (rh *ResponseHelper) write(c *gin.Context, status int, data interface{}, message []string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// Error writes an error response
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: message,
	}
	if len(details) > 0 {
		apiError.Details = details[0]
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest 400
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound 404
func (rh *ResponseHelper) NotFound(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message, details...)
}

// InternalError 500
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// FromError maps an AppError to its status and code
func (rh *ResponseHelper) FromError(c *gin.Context, err error) {
	status, code, message := describeError(err)
	var details []string
	if rh.Verbose {
		details = append(details, err.Error())
	}
	rh.Error(c, status, code, message, details...)
}

func describeError(err error) (int, string, string) {
	message := err.Error()
	var appError *apperrors.AppError
	if errors.As(err, &appError) {
		message = appError.Message
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeConfiguration:
		return http.StatusInternalServerError, apperrors.CodeOf(err), message
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, apperrors.CodeOf(err), message
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, apperrors.CodeOf(err), message
	default:
		return http.StatusInternalServerError, ErrorInternalError, message
	}
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
