package core

import (
	"sort"
	"strings"
	"time"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Sortable fields. Anything else is compared as a case-insensitive string.
const (
	SortByDate        = "date"
	SortByAmount      = "amount"
	SortByDescription = "description"
	SortByCategory    = "category"
	SortByType        = "type"
)

// Filter selects transactions. Zero-valued fields are not applied; all set
// fields must match.
type Filter struct {
	Type      TransactionType `json:"type,omitempty"`
	Category  string          `json:"category,omitempty"`
	StartDate Date            `json:"startDate,omitempty"`
	EndDate   Date            `json:"endDate,omitempty"`
	Search    string          `json:"search,omitempty"`
}

func (f Filter) match(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.StartDate.IsZero() && t.Date.Before(f.StartDate.Time) {
		return false
	}
	if !f.EndDate.IsZero() && t.Date.After(f.EndDate.Time) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// FilterTransactions keeps the transactions matching every set predicate.
// Search is a case-insensitive substring match on the description only.
func FilterTransactions(txns []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTransactions returns a sorted copy. Ties keep their input order.
func SortTransactions(txns []Transaction, field string, dir SortDirection) []Transaction {
	out := append([]Transaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareBy(out[i], out[j], field)
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareBy(a, b Transaction, field string) int {
	switch field {
	case SortByDate:
		return a.Date.Compare(b.Date.Time)
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	default:
		return strings.Compare(strings.ToLower(stringField(a, field)), strings.ToLower(stringField(b, field)))
	}
}

func stringField(t Transaction, field string) string {
	switch field {
	case "id":
		return t.ID
	case SortByDescription:
		return t.Description
	case SortByCategory:
		return t.Category
	case SortByType:
		return string(t.Type)
	case "createdAt":
		return t.CreatedAt.Format(time.RFC3339Nano)
	case "updatedAt":
		return t.UpdatedAt.Format(time.RFC3339Nano)
	}
	return ""
}

// Page is one slice of a longer list. Pages are 1-indexed.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Paginate returns items [(page-1)*size, page*size). Out of range pages are
// empty rather than an error. A non-positive size falls back to
// DefaultItemsPerPage.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultItemsPerPage
	}
	n := len(items)
	totalPages := n / size
	if n%size != 0 {
		totalPages++
	}
	p := Page[T]{
		Items:       []T{},
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalItems:  n,
		HasPrevPage: page > 1,
	}
	if page < 1 {
		p.HasNextPage = n > 0
		return p
	}
	if page > totalPages {
		return p
	}
	start := (page - 1) * size
	end := n
	if n-start > size {
		end = start + size
	}
	p.HasNextPage = page < totalPages
	p.Items = append(p.Items, items[start:end]...)
	return p
}

// ViewQuery describes the transaction list a caller wants to see.
type ViewQuery struct {
	Filter        Filter
	SortField     string
	SortDirection SortDirection
	Page          int
	PageSize      int
}

// DeriveView runs filter, sort and paginate in that order. Empty sort
// settings default to newest first; page 0 means the first page.
func DeriveView(txns []Transaction, q ViewQuery) Page[Transaction] {
	field := q.SortField
	if field == "" {
		field = SortByDate
	}
	dir := q.SortDirection
	if dir == "" {
		dir = Desc
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	sorted := SortTransactions(FilterTransactions(txns, q.Filter), field, dir)
	return Paginate(sorted, page, q.PageSize)
}
