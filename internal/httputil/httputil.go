// Package httputil holds the JSON helpers shared by the handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxBodyBytes = 1 << 20
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message,omitempty"`
}

// RespondJSON writes data wrapped in the response envelope.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	RespondMessage(w, status, data, "")
}

// RespondMessage writes data and a human readable message.
func RespondMessage(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{StatusCode: status, Data: data, Message: message})
}

// DecodeJSON decodes a single JSON document from body into dst.
func DecodeJSON(body io.Reader, dst any) error {
	if body == nil {
		return errors.New("empty request body")
	}
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}

// Pagination returns the page and page size requested through the query
// string. Invalid values fall back to the defaults; sizes are capped.
func Pagination(r *http.Request) (page, limit int) {
	page, limit = DefaultPage, DefaultPageSize
	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	raw := query.Get("limit")
	if raw == "" {
		raw = query.Get("page_size")
	}
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > MaxPageSize {
				parsed = MaxPageSize
			}
			limit = parsed
		}
	}
	return page, limit
}
