package domain

import "math"

// PageRequest selects a 1-based page of a fixed size.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page to at least 1.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing, so a huge page is simply past the end.
func (r PageRequest) Offset() int {
	if r.Page <= 1 || r.PerPage <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PerPage {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PerPage
}

// Page is one slice of an ordered result set plus its position.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
}

// NewPage builds a Page; a nil items slice becomes empty.
func NewPage[T any](items []T, total int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: req.Page, PerPage: req.PerPage}
}

// LastPage is the number of the final page, at least 1.
func (p *Page[T]) LastPage() int {
	if p.Total == 0 || p.PerPage == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// From is the 1-based position of the first item, or 0 for an empty page.
func (p *Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the 1-based position of the last item, or 0 for an empty page.
func (p *Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
