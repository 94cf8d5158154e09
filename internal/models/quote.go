// Package models defines core data structures for quotes, search requests, and stats.
package models

// Quote is a single scraped quote. Quotes are immutable once stored; a corpus
// rebuild replaces the whole set rather than mutating individual records.
type Quote struct {
	ID     int      `json:"id"`
	Text   string   `json:"text"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
	// AuthorAbout is the scraped author biography URL. Carried through for
	// API consumers; not indexed.
	AuthorAbout string `json:"author_about,omitempty"`
}

// Key returns the identity used for crawl-time deduplication.
func (q Quote) Key() QuoteKey {
	return QuoteKey{Text: q.Text, Author: q.Author}
}

// QuoteKey is the (text, author) pair that identifies a quote across pages.
type QuoteKey struct {
	Text   string
	Author string
}
