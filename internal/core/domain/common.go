package domain

import "time"

// AuditFields holds creation and last-update timestamps for stored entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortOrder selects the direction of a ledger listing.
type SortOrder string

const (
	// SortNewestFirst lists ledger entries from the most recent backwards.
	SortNewestFirst SortOrder = "desc"
	// SortOldestFirst lists ledger entries in chronological order.
	SortOldestFirst SortOrder = "asc"
)

// Page size bounds for ledger listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// PageRequest asks for one page of a listing.
type PageRequest struct {
	Limit     int
	NextToken string
	Order     SortOrder
}

// Normalize applies the default and maximum page size and the default order.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Order != SortOldestFirst {
		p.Order = SortNewestFirst
	}
	return p
}
