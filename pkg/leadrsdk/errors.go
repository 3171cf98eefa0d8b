package leadrsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leadr-dev/leadr-auth/pkg/httpx"
)

// Error codes shared by the server and SDK client.
const (
	ErrorCodeValidation     = "validation_error"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeDeviceBlocked  = "device_blocked"
	ErrorCodeInvalidNonce   = "invalid_nonce"
	ErrorCodeRateLimited    = "rate_limited"
	ErrorCodeServerError    = "server_error"
	ErrorCodeAdminForbidden = "admin_forbidden"
)

// APIError is the error envelope every non-2xx response carries. It
// implements the error interface and is used both by HTTP handlers (to write
// responses) and by the SDK client (to surface failures).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable, machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable description of the error
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    e.Code,
		"message": e.Message,
	})
}

// WithMessage returns a copy of the error with a more specific message.
func (e *APIError) WithMessage(msg string) *APIError {
	clone := *e
	clone.Message = msg
	return &clone
}

var (
	// ErrValidation is returned when the request body is malformed or a
	// required field is missing or invalid.
	ErrValidation = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeValidation,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrGameNotFound is returned when the referenced game is not registered.
	ErrGameNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "game not found",
	}

	// ErrInvalidToken is returned when a token is missing, malformed,
	// expired, revoked, or reused. Reuse intentionally looks the same as any
	// other credential failure from the outside.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "invalid credentials",
	}

	// ErrDeviceBlocked is returned when the device is banned or suspended.
	ErrDeviceBlocked = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeDeviceBlocked,
		Message:    "device may not authenticate",
	}

	// ErrInvalidNonce is returned when the nonce precondition on a mutating
	// request is not met.
	ErrInvalidNonce = &APIError{
		StatusCode: http.StatusPreconditionFailed,
		Code:       ErrorCodeInvalidNonce,
		Message:    "nonce is missing, expired, or already used",
	}

	// ErrAdminForbidden is returned when the admin token is missing or wrong.
	ErrAdminForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAdminForbidden,
		Message:    "admin credentials required",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}

	// ErrMethodNotAllowed is returned when the HTTP method is not allowed.
	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Code:       ErrorCodeValidation,
		Message:    "method not allowed",
	}
)

// parseAPIError decodes an error envelope from a response body. Used by the
// SDK client; falls back to a generic error when the body is not an envelope.
func parseAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Code == "" {
		return &APIError{
			StatusCode: statusCode,
			Code:       ErrorCodeServerError,
			Message:    fmt.Sprintf("unexpected response (status %d)", statusCode),
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       payload.Code,
		Message:    payload.Message,
	}
}
