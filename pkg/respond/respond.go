// Package respond writes JSON API responses and maps errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error with status code and a stable
// machine-readable key.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // stable error key (e.g. "unauthorized")
}

// Error implements the error interface.
func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrPaymentRequired     = HTTPError{Code: http.StatusPaymentRequired, Key: "payment_required"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// ErrorDetail is the error body of a JSON response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an error as a JSON response. HTTPError values map to their
// status code; anything else is reported as an internal server error with
// a generic body so internals never leak to clients.
func Error(w http.ResponseWriter, err error) {
	httpErr := ErrInternalServerError
	var he HTTPError
	if errors.As(err, &he) {
		httpErr = he
	}
	ErrorWithMessage(w, httpErr, http.StatusText(httpErr.Code))
}

// ErrorWithMessage writes an HTTPError with an explicit client-facing message.
func ErrorWithMessage(w http.ResponseWriter, httpErr HTTPError, message string) {
	JSON(w, httpErr.Code, map[string]any{
		"error": ErrorDetail{Code: httpErr.Key, Message: message},
	})
}
