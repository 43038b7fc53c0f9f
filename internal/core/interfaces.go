package core

import "context"

// MovieService defines the two operations of a movie directory (OMDb).
type MovieService interface {
	// SearchMovies returns one page of titles matching query. page starts at 1.
	SearchMovies(ctx context.Context, query string, page int) (*SearchPage, error)
	// GetMovie returns details for a single title by its IMDb ID.
	GetMovie(ctx context.Context, id string) (*MovieDetail, error)
}

// Frontend defines the interface for user-facing frontends (Telegram).
type Frontend interface {
	// Start starts the frontend and blocks until ctx is canceled
	Start(ctx context.Context) error
	// Stop stops the frontend
	Stop(ctx context.Context) error
	// Name returns the frontend name (e.g., "telegram")
	Name() string
}

// PageSize is the fixed number of results per search page.
const PageSize = 10

// MovieSummary is a single search result.
type MovieSummary struct {
	ID    string `json:"imdb_id"` // IMDb ID, the join key to MovieDetail
	Title string `json:"title"`
	Year  string `json:"year,omitempty"`
	Type  string `json:"type,omitempty"` // "movie", "series", "episode"
}

// MovieDetail holds the expanded view of a title. Every field may be empty.
type MovieDetail struct {
	ID       string `json:"imdb_id"`
	Title    string `json:"title,omitempty"`
	Year     string `json:"year,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Director string `json:"director,omitempty"`
	Plot     string `json:"plot,omitempty"`
	Poster   string `json:"poster,omitempty"` // poster image URL
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results      []MovieSummary `json:"results"`
	TotalResults int            `json:"total_results"`
}

// TotalPages returns the number of pages needed to hold all results.
func (p *SearchPage) TotalPages() int {
	return TotalPages(p.TotalResults)
}

// TotalPages returns ceil(totalResults / PageSize).
func TotalPages(totalResults int) int {
	if totalResults <= 0 {
		return 0
	}
	return (totalResults + PageSize - 1) / PageSize
}
