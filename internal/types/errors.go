package types

import (
	"fmt"
	"net/http"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Components MUST use these constants instead of
// hardcoded strings so callers can branch on error class.
const (
	// Configuration (hard failures: deployment misconfiguration)
	ErrCodeConfigMissingThreshold ErrorCode = "config_missing_threshold"
	ErrCodeConfigInvalidWindow    ErrorCode = "config_invalid_time_window"
	ErrCodeConfigInvalidRoute     ErrorCode = "config_invalid_route"

	// Validation
	ErrCodeValidationInvalidLat        ErrorCode = "validation_invalid_latitude"
	ErrCodeValidationInvalidLon        ErrorCode = "validation_invalid_longitude"
	ErrCodeValidationInvalidReportType ErrorCode = "validation_invalid_report_type"
	ErrCodeValidationInvalidDate       ErrorCode = "validation_invalid_date"

	// Route
	ErrCodeRouteStageNotFound ErrorCode = "route_stage_not_found"
	ErrCodeRouteBeforeStart   ErrorCode = "route_date_before_start"

	// Upstream (recovered locally by the source resolver; surfaced only in
	// provenance and debug output, never raised past the resolver)
	ErrCodeUpstreamPrimary     ErrorCode = "upstream_primary_unavailable"
	ErrCodeUpstreamSecondary   ErrorCode = "upstream_secondary_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamMalformed   ErrorCode = "upstream_malformed_response"

	// Persistence
	ErrCodeStoreWrite ErrorCode = "store_write_failed"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error type. Domain errors are expressed
// as AppError to enable consistent formatting and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// HTTPStatus maps the error code to the HTTP status returned by the API
// layer.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidationInvalidLat, ErrCodeValidationInvalidLon,
		ErrCodeValidationInvalidReportType, ErrCodeValidationInvalidDate,
		ErrCodeRouteBeforeStart:
		return http.StatusBadRequest
	case ErrCodeRouteStageNotFound:
		return http.StatusNotFound
	case ErrCodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamPrimary, ErrCodeUpstreamSecondary, ErrCodeUpstreamMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
