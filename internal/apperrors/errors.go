// Package apperrors defines the HTTP-aware error values returned by handlers.
package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the envelope's error field.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeBadGateway   = "upstream_error"
	CodeInternal     = "internal_error"
)

// Error is an error that knows how to render itself as an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string

	internal error
}

func (e *Error) Error() string {
	if e.internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.internal)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.internal
}

// WithInternal attaches the underlying cause. It is logged, never rendered.
func (e *Error) WithInternal(err error) *Error {
	clone := *e
	clone.internal = err
	return &clone
}

// WithFields attaches per-field messages for inline form errors.
func (e *Error) WithFields(fields map[string]string) *Error {
	clone := *e
	if len(fields) > 0 {
		clone.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			clone.Fields[k] = v
		}
	}
	return &clone
}

type body struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// WriteHTTP renders the error in the response envelope.
func (e *Error) WriteHTTP(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(body{
		StatusCode: e.Status,
		Message:    e.Message,
		Error:      e.Code,
		Fields:     e.Fields,
	})
}

func newError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return newError(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationError is a 422 carrying form validation failures.
func ValidationError(message string) *Error {
	return newError(http.StatusUnprocessableEntity, CodeValidation, message)
}

func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// NotFound reports a missing resource by name, e.g. NotFound("license").
func NotFound(resource string) *Error {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Conflict(message string) *Error {
	return newError(http.StatusConflict, CodeConflict, message)
}

// BadGateway is used when the platform API fails; the message is shown to
// the operator as-is.
func BadGateway(message string) *Error {
	return newError(http.StatusBadGateway, CodeBadGateway, message)
}

func Internal(message string) *Error {
	return newError(http.StatusInternalServerError, CodeInternal, message)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
