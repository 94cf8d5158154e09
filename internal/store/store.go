// Package store holds the immutable quote set of one corpus snapshot.
package store

import "github.com/hyperjump/meigen/internal/models"

// Store is the document store of a snapshot. It is built once from a
// complete quote set and never mutated; replacing the corpus means building
// a new Store and publishing a new snapshot around it.
type Store struct {
	quotes []models.Quote
	byID   map[int]int // quote id -> position in quotes
}

// New builds a store over quotes. The slice order is preserved and served by
// All; ingest assigns ids in that order so All is id-ordered.
func New(quotes []models.Quote) *Store {
	s := &Store{
		quotes: quotes,
		byID:   make(map[int]int, len(quotes)),
	}
	for i, q := range quotes {
		s.byID[q.ID] = i
	}
	return s
}

// Get returns the quote with the given id.
func (s *Store) Get(id int) (models.Quote, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Quote{}, false
	}
	return s.quotes[i], true
}

// All returns the full quote set in insertion order. Callers must not modify
// the returned slice.
func (s *Store) All() []models.Quote {
	return s.quotes
}

// Len returns the number of quotes.
func (s *Store) Len() int {
	return len(s.quotes)
}
