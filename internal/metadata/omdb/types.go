package omdb

import "strings"

// envelope holds the fields present on every OMDb response.
type envelope struct {
	Response string `json:"Response"` // "True" or "False"
	Error    string `json:"Error"`
}

// searchResponse is the OMDb "?s=" payload.
type searchResponse struct {
	Search       []searchResult `json:"Search"`
	TotalResults string         `json:"totalResults"`
}

// searchResult is one entry of searchResponse.Search.
type searchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// detailResponse is the OMDb "?i=" payload.
type detailResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Genre    string `json:"Genre"`
	Director string `json:"Director"`
	Plot     string `json:"Plot"`
	Poster   string `json:"Poster"`
	IMDbID   string `json:"imdbID"`
}

// notAvailable is OMDb's placeholder for a missing field.
const notAvailable = "N/A"

// clean trims s and maps OMDb's "N/A" placeholder to the empty string.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}
