// Package search dispatches queries against the active corpus snapshot.
package search

import (
	"github.com/hyperjump/meigen/internal/lexical"
	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/internal/semantic"
	"github.com/hyperjump/meigen/internal/store"
)

// Snapshot is the complete, mutually consistent serving view produced by one
// ingestion run: the quote store plus every index and aggregate derived from
// exactly that quote set. Snapshots are immutable and replaced wholesale; a
// query never mixes the store of one snapshot with the indexes of another.
type Snapshot struct {
	Store    *store.Store
	Lexical  *lexical.Index
	Semantic *semantic.Index
	Stats    models.StatsSummary
}
