// Package search holds the search/pagination and detail-expansion state machines shared by
// every frontend. Controllers never perform I/O: transitions that need the network return a
// request value, the owner runs it and feeds the result back. Results carry the generation
// they were issued under, so anything issued before a query change or teardown is dropped.
//
// Neither Controller nor Item is safe for concurrent use.
package search

import (
	"errors"
	"unicode/utf8"

	"github.com/vadimtrunov/moviescout/internal/core"
)

// MinQueryLength is the shortest query that triggers a fetch.
const MinQueryLength = 3

var errEmptyResult = errors.New("empty result")

// Controller owns one search session: the query, the accumulated results, the page cursor
// and the more-available flag.
type Controller struct {
	query   string
	page    int // page of the outstanding fetch, or the last applied page
	applied int // last page successfully appended
	total   int
	items   []*Item
	more    bool
	loading bool
	err     error
	gen     uint64
}

// NewController returns an idle controller with an empty query.
func NewController() *Controller {
	return &Controller{page: 1, more: true}
}

// SetQuery handles a query change. The reset is applied before returning, so no result from
// an earlier query can be appended afterwards. When q is long enough the page-1 request is
// returned and the controller is loading.
func (c *Controller) SetQuery(q string) (PageRequest, bool) {
	if q == c.query {
		return PageRequest{}, false
	}

	c.query = q
	c.gen++
	c.items = nil
	c.page = 1
	c.applied = 0
	c.total = 0
	c.more = true
	c.loading = false
	c.err = nil

	if c.Idle() {
		return PageRequest{}, false
	}
	return c.fetch(1), true
}

// LoadMore requests the next page. It is a no-op while idle, while a fetch is in flight or
// once the last page has been applied.
func (c *Controller) LoadMore() (PageRequest, bool) {
	if c.Idle() || c.loading || !c.more {
		return PageRequest{}, false
	}
	return c.fetch(c.applied + 1), true
}

// Retry re-issues the page that failed last. Nothing is retried automatically.
func (c *Controller) Retry() (PageRequest, bool) {
	if c.err == nil {
		return PageRequest{}, false
	}
	return c.LoadMore()
}

func (c *Controller) fetch(page int) PageRequest {
	c.page = page
	c.loading = true
	return PageRequest{Query: c.query, Page: page, gen: c.gen}
}

// Apply merges a page result. It reports false when the result is stale (issued for a
// previous query, a torn-down controller, or a page that is no longer outstanding).
func (c *Controller) Apply(res PageResult) bool {
	if res.Request.gen != c.gen || !c.loading || res.Request.Page != c.page {
		return false
	}
	c.loading = false

	if res.Err != nil || res.Page == nil {
		c.err = res.Err
		if c.err == nil {
			c.err = &core.TransportError{Op: "search movies", Err: errEmptyResult}
		}
		c.page = max(c.applied, 1)
		return true
	}

	for _, m := range res.Page.Results {
		c.items = append(c.items, newItem(m, len(c.items), c.gen))
	}
	c.applied = res.Request.Page
	c.total = res.Page.TotalResults
	if c.applied >= core.TotalPages(c.total) {
		c.more = false
	}
	c.err = nil
	return true
}

// ApplyDetail routes a detail result to the item it was issued for. It reports false when
// the item no longer exists in this session.
func (c *Controller) ApplyDetail(res DetailResult) bool {
	req := res.Request
	if req.gen != c.gen || req.Index < 0 || req.Index >= len(c.items) {
		return false
	}
	it := c.items[req.Index]
	if it.summary.ID != req.ID {
		return false
	}
	return it.apply(res)
}

// Close tears the session down; results that arrive later are ignored.
func (c *Controller) Close() {
	c.gen++
	c.items = nil
	c.loading = false
}

// Query returns the current query string.
func (c *Controller) Query() string { return c.query }

// Idle reports whether the query is too short to search.
func (c *Controller) Idle() bool {
	return utf8.RuneCountInString(c.query) < MinQueryLength
}

// Page returns the page cursor.
func (c *Controller) Page() int { return c.page }

// TotalResults returns the total reported by the service for the current query.
func (c *Controller) TotalResults() int { return c.total }

// More reports whether another page may be requested.
func (c *Controller) More() bool { return c.more }

// Loading reports whether a page fetch is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the typed error of the last failed page fetch.
func (c *Controller) Err() error { return c.err }

// ErrorMessage returns the user-facing message for the last failure, or "".
func (c *Controller) ErrorMessage() string {
	if c.err == nil {
		return ""
	}
	return MsgFetchFailed
}

// Len returns the number of accumulated results.
func (c *Controller) Len() int { return len(c.items) }

// Items returns the accumulated results in server order.
func (c *Controller) Items() []*Item { return c.items }

// Item returns the i-th result, or nil when out of range.
func (c *Controller) Item(i int) *Item {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// StatusLine returns the list footer for the current state.
func (c *Controller) StatusLine() string {
	switch {
	case c.Idle():
		return MsgPrompt
	case c.loading && len(c.items) == 0:
		return MsgLoading
	case c.loading:
		return MsgLoadingMore
	case !c.more:
		return MsgNoMore
	}
	return ""
}
