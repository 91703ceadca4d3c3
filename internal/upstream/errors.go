package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed platform call. Status is 0 when the request never
// produced a response.
type APIError struct {
	Status  int
	Message string
	Code    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("upstream: %s: %v", e.Message, e.Err)
		}
		return "upstream: " + e.Message
	}
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	status := statusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsRejected reports whether the platform refused the payload (400 or 422).
func IsRejected(err error) bool {
	status := statusOf(err)
	return status == http.StatusBadRequest || status == http.StatusUnprocessableEntity
}
