package domain

import "context"

// SearchResult is one organic result as returned by the search provider.
// Position is the provider-assigned rank; 0 means the provider did not
// supply a usable integer position.
type SearchResult struct {
	Position int    `json:"position,omitempty"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
}

// SearchQuery carries the keyword and locale parameters for one search.
type SearchQuery struct {
	Keyword string
	GL      string // geolocation code, e.g. "br"
	HL      string // language code, e.g. "pt"
	Num     int    // requested result count
}

// DomainRank is one entry of the rendered report: a registrable domain and
// the rank position it holds in the result set.
type DomainRank struct {
	Position int
	Domain   string
}

// SearchProvider performs one search request against a remote provider.
// Implementations make a single attempt; callers own retry policy (there is
// none in this bot).
type SearchProvider interface {
	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
	Name() string
}
