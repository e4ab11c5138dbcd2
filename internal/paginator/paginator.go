// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package paginator slices ordered result sets into fixed-size pages
// addressed by a 1-based page index taken from a query parameter.
package paginator

import "strconv"

// Page describes one resolved page of a listing. Offset and PerPage feed
// directly into a LIMIT/OFFSET query.
type Page struct {
	Number     int // 1-based page index after fallback rules
	PerPage    int
	TotalItems int
	TotalPages int
	Offset     int
}

// Resolve maps a raw page token onto a valid page. A token that does not
// parse as a positive integer resolves to page 1; a token past the last
// page resolves to the last page. An empty result set still has one
// (empty) page, so callers never receive an error.
func Resolve(token string, totalItems, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		n = 1
	}
	if n > totalPages {
		n = totalPages
	}

	return Page{
		Number:     n,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     (n - 1) * perPage,
	}
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page index, clamped to 1.
func (p Page) PrevNumber() int {
	if p.HasPrev() {
		return p.Number - 1
	}
	return 1
}

// NextNumber returns the next page index, clamped to the last page.
func (p Page) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.TotalPages
}
