// internal/api/error_codes.go
package api

// API error codes
const (
	// generic
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// sessions and content
	ErrorSessionNotFound  = "SESSION_NOT_FOUND"
	ErrorScenarioNotFound = "SCENARIO_NOT_FOUND"
	ErrorRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrorConfigInvalid    = "CONFIG_INVALID"
	ErrorValidation       = "VALIDATION_ERROR"

	// websocket
	ErrorUnknownCommand = "UNKNOWN_COMMAND"
	ErrorBadMessage     = "BAD_MESSAGE"
)
