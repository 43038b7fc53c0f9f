package search

import "github.com/vadimtrunov/moviescout/internal/core"

// DetailState is the displayed state of an Item.
type DetailState int

// Detail states.
const (
	DetailCollapsed DetailState = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

func (s DetailState) String() string {
	switch s {
	case DetailCollapsed:
		return "collapsed"
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailFailed:
		return "failed"
	}
	return "unknown"
}

// Item is one displayed result with its lazily fetched details. Details are fetched at most
// once per successful load and kept for as long as the item is displayed.
type Item struct {
	summary  core.MovieSummary
	index    int
	gen      uint64
	expanded bool
	loading  bool
	detail   *core.MovieDetail
	err      error
	fetches  int
}

func newItem(m core.MovieSummary, index int, gen uint64) *Item {
	return &Item{summary: m, index: index, gen: gen}
}

// Toggle expands or collapses the item. Expanding an item whose details are neither loaded
// nor in flight returns the detail request to run; an earlier failure counts as not loaded.
func (it *Item) Toggle() (DetailRequest, bool) {
	if it.expanded {
		it.expanded = false
		return DetailRequest{}, false
	}
	it.expanded = true
	if it.detail != nil || it.loading {
		return DetailRequest{}, false
	}
	it.loading = true
	it.err = nil
	it.fetches++
	return DetailRequest{ID: it.summary.ID, Index: it.index, gen: it.gen}, true
}

// Expand expands a collapsed item and is a no-op on an expanded one.
func (it *Item) Expand() (DetailRequest, bool) {
	if it.expanded {
		return DetailRequest{}, false
	}
	return it.Toggle()
}

func (it *Item) apply(res DetailResult) bool {
	if !it.loading {
		return false
	}
	it.loading = false
	if res.Err != nil || res.Detail == nil {
		it.err = res.Err
		if it.err == nil {
			it.err = &core.TransportError{Op: "get movie", Err: errEmptyResult}
		}
		return true
	}
	it.detail = res.Detail
	it.err = nil
	return true
}

// Summary returns the search result this item displays.
func (it *Item) Summary() core.MovieSummary { return it.summary }

// Index returns the item's position in the result list.
func (it *Item) Index() int { return it.index }

// Expanded reports whether the item is expanded.
func (it *Item) Expanded() bool { return it.expanded }

// State returns the displayed state.
func (it *Item) State() DetailState {
	switch {
	case !it.expanded:
		return DetailCollapsed
	case it.loading:
		return DetailLoading
	case it.err != nil:
		return DetailFailed
	case it.detail != nil:
		return DetailLoaded
	}
	return DetailLoading
}

// Loaded reports whether details have been fetched, regardless of expansion.
func (it *Item) Loaded() bool { return it.detail != nil }

// Detail returns the fetched details, or nil.
func (it *Item) Detail() *core.MovieDetail { return it.detail }

// Err returns the typed error of the last failed detail fetch.
func (it *Item) Err() error { return it.err }

// ErrorMessage returns the user-facing message for a failed detail fetch, or "".
func (it *Item) ErrorMessage() string {
	if it.err == nil {
		return ""
	}
	return MsgDetailFailed
}

// Fetches returns how many detail requests this item has issued.
func (it *Item) Fetches() int { return it.fetches }
