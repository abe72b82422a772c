package core

// SearchResult is one entry returned by the search provider, after the junk
// filter has been applied.
type SearchResult struct {
	Title           string `json:"title"`
	Link            string `json:"link"`
	Snippet         string `json:"snippet"`
	DisplayLink     string `json:"display_link"`
	IsJunk          bool   `json:"is_junk"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// SearchQuery is one entry of the static query catalog.
type SearchQuery struct {
	Query       string `json:"query"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
