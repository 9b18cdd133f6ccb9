package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeInvalidPayload  = "ERR_INVALID_PAYLOAD"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized     = "ERR_UNAUTHORIZED"
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"

	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeConflict     = "ERR_CONFLICT"

	// ErrCodeWarehouseUnavailable is used when the warehouse API cannot serve a request
	ErrCodeWarehouseUnavailable = "ERR_WAREHOUSE_UNAVAILABLE"
	// ErrCodeMaxConnections is used when the change feed is at capacity
	ErrCodeMaxConnections = "ERR_MAX_CONNECTIONS"
	ErrCodeShuttingDown   = "ERR_SHUTTING_DOWN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidPayload:  http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeInvalidSignature: http.StatusUnauthorized,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeConflict:     http.StatusConflict,

	ErrCodeWarehouseUnavailable: http.StatusBadGateway,
	ErrCodeMaxConnections:       http.StatusServiceUnavailable,
	ErrCodeShuttingDown:         http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps shared.DomainError codes to API error codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":     ErrCodeNotFound,
	"INVALID_INPUT": ErrCodeInvalidInput,
	"INVALID_STATE": ErrCodeInvalidState,
	"UNAUTHORIZED":  ErrCodeUnauthorized,

	"CONCURRENT_MODIFICATION": ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
