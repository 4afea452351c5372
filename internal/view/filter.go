// Package view holds the client-side state machines behind the listing and
// job views: filter criteria, server-driven pagination, and job aggregates.
package view

import (
	"strings"

	"github.com/goldcare-ai/goldctl/internal/api"
)

// Criteria is the filter state for the source listing. Types and tiers are
// non-exclusive multi-selects; an empty selection is valid and passed through
// to the backend as-is.
type Criteria struct {
	Types            []string
	Tiers            []int
	SourceIDPrefixes []string
}

// ParsePrefixes splits a comma-delimited free-text field into a prefix list,
// trimming whitespace and dropping empty entries.
func ParsePrefixes(text string) []string {
	parts := strings.Split(text, ",")
	prefixes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// BuildRequest derives the listing request body from the criteria and page
// cursor. Pure function: identical inputs produce an identical body. Slices
// are never nil so the wire encoding is always a JSON array.
func BuildRequest(c Criteria, page, limit int) api.FilterRequest {
	req := api.FilterRequest{
		Types:            append([]string{}, c.Types...),
		Tiers:            append([]int{}, c.Tiers...),
		SourceIDPrefixes: append([]string{}, c.SourceIDPrefixes...),
		Page:             page,
		Limit:            limit,
	}
	return req
}
