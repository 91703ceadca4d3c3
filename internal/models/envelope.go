package models

import "encoding/json"

// Envelope is the response shape shared by the upstream API and this service.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}

// Page is a paginated list result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// TotalPages returns the number of pages for the current limit.
func (p *Page[T]) TotalPages() int64 {
	if p == nil || p.Limit <= 0 {
		return 0
	}
	return (p.Total + int64(p.Limit) - 1) / int64(p.Limit)
}

// MapPage converts the items of a page, keeping its pagination metadata.
func MapPage[T, U any](page *Page[T], convert func(*T) U) *Page[U] {
	if page == nil {
		return &Page[U]{Items: []U{}}
	}
	items := make([]U, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return &Page[U]{Items: items, Total: page.Total, Page: page.Page, Limit: page.Limit}
}

// ListQuery carries pagination and filtering for list endpoints.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	LicenseID string
}
