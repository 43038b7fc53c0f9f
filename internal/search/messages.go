package search

// User-facing messages. Errors from the movie service are reduced to these at the
// controller boundary; the typed error is kept alongside for presentation.
const (
	MsgFetchFailed  = "Failed to fetch movies. Please try again."
	MsgDetailFailed = "Failed to load movie details."
	MsgPrompt       = "Enter at least 3 characters to search for movies"
	MsgLoading      = "Loading..."
	MsgLoadingMore  = "Loading more movies..."
	MsgNoMore       = "No more movies to load."
	MsgNotAvailable = "N/A"
)
