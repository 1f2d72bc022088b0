package store

import "github.com/wolfeidau/tenantd/internal/models"

// Pagination bounds. Size falls back to DefaultPageSize and is capped at
// MaxPageSize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based pagination request. IncludeInactive widens membership
// listings to pending and departed members.
type Page struct {
	Number          int
	Size            int
	IncludeInactive bool
}

// Normalize clamps the request to valid 1-based positive values.
// Adapters must call this before computing offsets or page counts.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// TotalPages computes the page count for a normalized page size,
// rounding up.
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// MemberPage is one page of a membership listing.
type MemberPage struct {
	Items      []*models.MemberDetail
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
