// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
)

// --- Pagination ---

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Defaults sets default pagination values.
func (p *PaginationRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
}

// --- List Response ---

// ListResponse wraps list results with page metadata.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewListResponse computes page numbers from limit/offset.
func NewListResponse(items any, total int64, limit, offset int) ListResponse {
	if limit <= 0 {
		limit = 20
	}
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return ListResponse{
		Items:      items,
		TotalCount: total,
		Page:       offset/limit + 1,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// ItemsResponse wraps an unpaginated collection.
type ItemsResponse struct {
	Items any `json:"items"`
}

// --- Common Requests ---

// BulkDeleteRequest lists the ids to delete atomically.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,uuid"`
}

// ParsedIDs converts the request ids.
func (r *BulkDeleteRequest) ParsedIDs() ([]id.ID, error) {
	ids, err := id.ParseList(r.IDs)
	if err != nil {
		return nil, apperror.NewFieldValidation("ids", "invalid id format")
	}
	return ids, nil
}

// BulkDeleteResponse reports how many records were removed.
type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// --- Dates ---

// Date accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Calendar dates are read as UTC midnight.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}

// ParseDate parses 2006-01-02 or RFC 3339 input.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD or RFC 3339").
			WithDetail("value", raw)
	}
	return t.UTC(), nil
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
