package view

import "github.com/goldcare-ai/goldctl/internal/api"

// Pager wraps the server's pagination object and owns page navigation. The
// fetched pagination is the sole source of truth: the client mirrors
// hasNextPage/hasPrevPage rather than recomputing them.
type Pager struct {
	api.Pagination
}

// NewPager returns a pager positioned on page 1 of 1.
func NewPager(itemsPerPage int) Pager {
	return Pager{api.Pagination{
		CurrentPage:  1,
		TotalPages:   1,
		ItemsPerPage: itemsPerPage,
	}}
}

// Apply replaces the pager state with the server's pagination object,
// clamping currentPage into [1, totalPages].
func (p *Pager) Apply(server api.Pagination) {
	if server.TotalPages < 1 {
		server.TotalPages = 1
	}
	if server.CurrentPage < 1 {
		server.CurrentPage = 1
	}
	if server.CurrentPage > server.TotalPages {
		server.CurrentPage = server.TotalPages
	}
	p.Pagination = server
}

// GoTo moves to the given page. Returns false (and changes nothing) when the
// target is out of [1, totalPages] or already current; callers fetch only on
// true.
func (p *Pager) GoTo(page int) bool {
	if page < 1 || page > p.TotalPages || page == p.CurrentPage {
		return false
	}
	p.CurrentPage = page
	return true
}

// Next advances one page, trusting the server's hasNextPage flag.
func (p *Pager) Next() bool {
	if !p.HasNextPage {
		return false
	}
	return p.GoTo(p.CurrentPage + 1)
}

// Prev goes back one page, trusting the server's hasPrevPage flag.
func (p *Pager) Prev() bool {
	if !p.HasPrevPage {
		return false
	}
	return p.GoTo(p.CurrentPage - 1)
}

// First jumps to page 1.
func (p *Pager) First() bool { return p.GoTo(1) }

// Last jumps to the final page.
func (p *Pager) Last() bool { return p.GoTo(p.TotalPages) }

// WindowItem is one slot of the bounded pager control: either a page number
// or an ellipsis gap.
type WindowItem struct {
	Page int
	Gap  bool
}

// Window returns the bounded page-number window for the current position.
func (p *Pager) Window() []WindowItem {
	return PageWindow(p.CurrentPage, p.TotalPages)
}

// PageWindow computes a stable, bounded-width pager window:
//
//	totalPages <= 7          -> every page, no gaps
//	otherwise                -> 1, gap?, [current-1 .. current+1] clipped to
//	                            (1, totalPages), gap?, totalPages
//
// A leading gap appears only when currentPage > 4, a trailing one only when
// currentPage < totalPages-3, so boundary pages never sit next to an ellipsis.
func PageWindow(currentPage, totalPages int) []WindowItem {
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	var window []WindowItem
	if totalPages <= 7 {
		for page := 1; page <= totalPages; page++ {
			window = append(window, WindowItem{Page: page})
		}
		return window
	}

	window = append(window, WindowItem{Page: 1})
	if currentPage > 4 {
		window = append(window, WindowItem{Gap: true})
	}

	lo := max(2, currentPage-1)
	hi := min(totalPages-1, currentPage+1)
	for page := lo; page <= hi; page++ {
		window = append(window, WindowItem{Page: page})
	}

	if currentPage < totalPages-3 {
		window = append(window, WindowItem{Gap: true})
	}
	window = append(window, WindowItem{Page: totalPages})
	return window
}
