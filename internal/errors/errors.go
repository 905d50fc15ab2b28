// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	// ErrorTypeConfiguration marks a broken content graph: an unresolved
	// route, a dangling transition option, malformed scenario data.
	ErrorTypeConfiguration ErrorType = "configuration_error"
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeError         ErrorType = "processing_error"
)

// AppError is the error shape surfaced to the API layer
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error chaining
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError with the default code for its type
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// WithCode overrides the user facing code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// NewConfigurationError reports broken authored content
func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

// NewValidationError reports bad caller input
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError reports an unknown session or scenario
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError reports anything else
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// TypeOf returns the type of the first AppError in the chain, or "" if none
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

// CodeOf returns the code of the first AppError in the chain
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Code
	}
	return generateErrorCode("")
}

// IsConfigurationError checks for a configuration error
func IsConfigurationError(err error) bool {
	return TypeOf(err) == ErrorTypeConfiguration
}

// IsValidationError checks for a validation error
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError checks for a not found error
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeConfiguration:
		return "CONFIG_INVALID"
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError prefixes an existing error, keeping its type when it is
// already an AppError.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     err,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
