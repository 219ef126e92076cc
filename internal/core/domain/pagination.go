package domain

import "strings"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// SortOrder orders listings by creation time.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

// ParseSortOrder maps "asc" to OldestFirst; anything else is newest-first.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return OldestFirst
	}
	return NewestFirst
}

// ListQuery is a bounded, normalized listing request. Build it with
// NewListQuery so Page, Limit and Skip are always consistent.
type ListQuery struct {
	Page   int
	Limit  int
	Skip   int
	Search string
	// Fields are matched case-insensitively with OR semantics when Search is set.
	Fields []string
	Sort   SortOrder
}

// NewListQuery normalizes raw paging input: page < 1 becomes 1, a zero limit
// becomes DefaultPageLimit and any other limit is clamped to [1, MaxPageLimit].
func NewListQuery(page, limit int, search string, fields ...string) ListQuery {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return ListQuery{
		Page:   page,
		Limit:  limit,
		Skip:   (page - 1) * limit,
		Search: strings.TrimSpace(search),
		Fields: fields,
	}
}

// WithSort returns a copy ordered by s.
func (q ListQuery) WithSort(s SortOrder) ListQuery {
	q.Sort = s
	return q
}

// Matches applies the search predicate to the values of the searchable fields.
func (q ListQuery) Matches(values ...string) bool {
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Page is one slice of a listing plus the unpaginated match count.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
