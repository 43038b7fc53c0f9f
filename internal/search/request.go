package search

import (
	"context"

	"github.com/vadimtrunov/moviescout/internal/core"
)

// PageRequest describes a search fetch issued by a Controller. The owner runs it off the
// event loop and passes the PageResult back to Controller.Apply.
type PageRequest struct {
	Query string
	Page  int
	gen   uint64
}

// PageResult is the outcome of a PageRequest.
type PageResult struct {
	Request PageRequest
	Page    *core.SearchPage
	Err     error
}

// Run performs the fetch. It never touches controller state.
func (r PageRequest) Run(ctx context.Context, svc core.MovieService) PageResult {
	page, err := svc.SearchMovies(ctx, r.Query, r.Page)
	return PageResult{Request: r, Page: page, Err: err}
}

// DetailRequest describes a detail fetch issued by Item.Toggle.
type DetailRequest struct {
	ID    string
	Index int
	gen   uint64
}

// DetailResult is the outcome of a DetailRequest.
type DetailResult struct {
	Request DetailRequest
	Detail  *core.MovieDetail
	Err     error
}

// Run performs the fetch. It never touches item state.
func (r DetailRequest) Run(ctx context.Context, svc core.MovieService) DetailResult {
	detail, err := svc.GetMovie(ctx, r.ID)
	return DetailResult{Request: r, Detail: detail, Err: err}
}
