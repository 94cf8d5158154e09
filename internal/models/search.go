package models

import "fmt"

// SearchMode selects which index answers a search request.
type SearchMode int

const (
	ModeKeyword SearchMode = iota
	ModeAuthor
	ModeTag
	ModeSemantic
)

// String returns the wire name of the mode.
func (m SearchMode) String() string {
	switch m {
	case ModeKeyword:
		return "keyword"
	case ModeAuthor:
		return "author"
	case ModeTag:
		return "tag"
	case ModeSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// ParseSearchMode maps a wire name to a SearchMode.
// Unknown names return an error, never a panic.
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "keyword":
		return ModeKeyword, nil
	case "author":
		return ModeAuthor, nil
	case "tag":
		return ModeTag, nil
	case "semantic":
		return ModeSemantic, nil
	default:
		return 0, fmt.Errorf("unknown search type %q (want keyword, author, tag, or semantic)", s)
	}
}

// SearchRequest is a search against the active corpus snapshot.
// Exact is ignored for semantic mode.
type SearchRequest struct {
	Mode  SearchMode `json:"mode"`
	Query string     `json:"query"`
	Exact bool       `json:"exact,omitempty"`
	Limit int        `json:"limit,omitempty"`
}

// Validate checks the request. Returns an error for an empty query. Limit
// defaulting and capping are configured policy, applied where the request is
// served.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	return nil
}

// SearchResult is a hydrated search hit. SimilarityScore is set only for
// semantic mode and is always in [0, 1].
type SearchResult struct {
	Text            string   `json:"text"`
	Author          string   `json:"author"`
	Tags            []string `json:"tags"`
	AuthorAbout     string   `json:"author_about,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}
