// Package repository reads and writes platform resources. Licenses, users,
// roles, modules and structure trees live behind the platform API; dashboard
// sessions live in PostgreSQL.
package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// ErrNotFound is returned by mutations addressed at a missing resource.
// Lookups return (nil, nil) instead.
var ErrNotFound = errors.New("resource not found")

func resourcePath(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return "/" + strings.Join(escaped, "/")
}

func listValues(q models.ListQuery) url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		values.Set("search", search)
	}
	if licenseID := strings.TrimSpace(q.LicenseID); licenseID != "" {
		values.Set("license_id", licenseID)
	}
	return values
}

// pageDTO accepts both a bare JSON array and a paginated object.
type pageDTO[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func (p *pageDTO[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = pageDTO[T]{Items: items, Total: int64(len(items))}
		return nil
	}

	type plain pageDTO[T]
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode page: %w", err)
	}
	*p = pageDTO[T](decoded)
	return nil
}

func (p *pageDTO[T]) toPage(q models.ListQuery) *models.Page[T] {
	page := &models.Page[T]{Items: p.Items, Total: p.Total, Page: p.Page, Limit: p.Limit}
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.Limit == 0 {
		page.Limit = q.Limit
	}
	if page.Total < int64(len(page.Items)) {
		page.Total = int64(len(page.Items))
	}
	return page
}

// notFound maps a platform 404 to ErrNotFound.
func notFound(err error) error {
	if upstream.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
