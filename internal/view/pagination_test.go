package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goldcare-ai/goldctl/internal/api"
)

// renderWindow flattens a window into "1 … 4 5 6 … 10" for readable expectations.
func renderWindow(items []WindowItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if item.Gap {
			parts[i] = "…"
		} else {
			parts[i] = fmt.Sprintf("%d", item.Page)
		}
	}
	return strings.Join(parts, " ")
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    string
	}{
		{"single page", 1, 1, "1"},
		{"five pages", 3, 5, "1 2 3 4 5"},
		{"seven pages no gaps", 7, 7, "1 2 3 4 5 6 7"},
		{"eight pages at start", 1, 8, "1 2 … 8"},
		{"eight pages in middle", 4, 8, "1 3 4 5 … 8"},
		{"middle of ten", 5, 10, "1 … 4 5 6 … 10"},
		{"first of ten", 1, 10, "1 2 … 10"},
		{"second of ten", 2, 10, "1 2 3 … 10"},
		{"fourth of ten no leading gap", 4, 10, "1 3 4 5 … 10"},
		{"fifth of ten both gaps", 5, 10, "1 … 4 5 6 … 10"},
		{"seventh of ten no trailing gap", 7, 10, "1 … 6 7 8 10"},
		{"ninth of ten", 9, 10, "1 … 8 9 10"},
		{"last of ten", 10, 10, "1 … 9 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderWindow(PageWindow(tt.current, tt.total))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageWindowNeverAdjacentGapAtBoundary(t *testing.T) {
	// A gap must never sit directly between 1 and 2, or between
	// totalPages-1 and totalPages.
	for total := 8; total <= 20; total++ {
		for current := 1; current <= total; current++ {
			window := PageWindow(current, total)
			for i := 1; i < len(window); i++ {
				if !window[i].Gap {
					continue
				}
				before := window[i-1].Page
				after := window[i+1].Page
				assert.Greater(t, after-before, 1,
					"useless gap between %d and %d (current=%d total=%d)", before, after, current, total)
			}
		}
	}
}

func TestPageWindowClampsBadInput(t *testing.T) {
	assert.Equal(t, "1", renderWindow(PageWindow(0, 0)))
	assert.Equal(t, "1 … 9 10", renderWindow(PageWindow(99, 10)))
	assert.Equal(t, "1 2 … 10", renderWindow(PageWindow(-3, 10)))
}

func TestPagerApplyClamps(t *testing.T) {
	p := NewPager(20)
	p.Apply(api.Pagination{CurrentPage: 9, TotalPages: 4, TotalItems: 70, ItemsPerPage: 20})
	assert.Equal(t, 4, p.CurrentPage, "currentPage clamps to totalPages")

	p.Apply(api.Pagination{CurrentPage: 0, TotalPages: 0})
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
}

func TestPagerNavigation(t *testing.T) {
	p := NewPager(20)
	p.Apply(api.Pagination{
		CurrentPage: 3, TotalPages: 5, TotalItems: 90,
		ItemsPerPage: 20, HasNextPage: true, HasPrevPage: true,
	})

	assert.False(t, p.GoTo(3), "same page is a no-op")
	assert.False(t, p.GoTo(0), "below range is a no-op")
	assert.False(t, p.GoTo(6), "above range is a no-op")
	assert.Equal(t, 3, p.CurrentPage)

	assert.True(t, p.Next())
	assert.Equal(t, 4, p.CurrentPage)
	assert.True(t, p.Prev())
	assert.Equal(t, 3, p.CurrentPage)

	assert.True(t, p.First())
	assert.Equal(t, 1, p.CurrentPage)
	assert.True(t, p.Last())
	assert.Equal(t, 5, p.CurrentPage)
}

func TestPagerTrustsServerFlags(t *testing.T) {
	// The server said there is no next page; the client must not advance even
	// though currentPage < totalPages would suggest otherwise.
	p := NewPager(20)
	p.Apply(api.Pagination{CurrentPage: 2, TotalPages: 5, HasNextPage: false, HasPrevPage: true})
	assert.False(t, p.Next())
	assert.Equal(t, 2, p.CurrentPage)

	p.Apply(api.Pagination{CurrentPage: 2, TotalPages: 5, HasNextPage: true, HasPrevPage: false})
	assert.False(t, p.Prev())
	assert.Equal(t, 2, p.CurrentPage)
}
