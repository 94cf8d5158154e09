package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/meigen/internal/models"
)

// ErrNoCorpus is returned when no snapshot has been published yet.
var ErrNoCorpus = errors.New("no corpus available; run a scrape first")

// Limits bounds result counts per search. Zero values fall back to the
// defaults (10 and 100).
type Limits struct {
	Default int
	Max     int
}

// Router routes search requests to the right index of the active snapshot
// and hydrates matches back through that same snapshot's store. The active
// snapshot reference is the only mutable state; reads are lock-free.
type Router struct {
	current atomic.Pointer[Snapshot]
	limits  Limits
	logger  *zap.Logger
}

// NewRouter creates a router with no published snapshot. logger may be nil.
func NewRouter(limits Limits, logger *zap.Logger) *Router {
	if limits.Default <= 0 {
		limits.Default = 10
	}
	if limits.Max <= 0 {
		limits.Max = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{limits: limits, logger: logger}
}

// Publish atomically swaps the active snapshot. In-flight queries keep
// reading the snapshot they started with.
func (r *Router) Publish(snap *Snapshot) {
	r.current.Store(snap)
}

// Current returns the active snapshot, or nil before the first publish.
func (r *Router) Current() *Snapshot {
	return r.current.Load()
}

// Search validates req, dispatches it to the index selected by req.Mode, and
// returns hydrated results in index order. An unset request limit falls back
// to the router's configured default; explicit limits are capped at the
// configured maximum. Exact is ignored for semantic mode. Validation problems
// surface as errors, not panics.
func (r *Router) Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := r.Current()
	if snap == nil {
		return nil, ErrNoCorpus
	}

	limit := req.Limit
	if limit <= 0 {
		limit = r.limits.Default
	}
	if limit > r.limits.Max {
		limit = r.limits.Max
	}

	switch req.Mode {
	case models.ModeKeyword:
		return r.hydrate(snap, clip(snap.Lexical.Keyword(req.Query), limit), nil)
	case models.ModeAuthor:
		return r.hydrate(snap, clip(snap.Lexical.Author(req.Query, req.Exact), limit), nil)
	case models.ModeTag:
		return r.hydrate(snap, clip(snap.Lexical.Tag(req.Query, req.Exact), limit), nil)
	case models.ModeSemantic:
		matches := snap.Semantic.Query(req.Query, limit)
		ids := make([]int, len(matches))
		scores := make(map[int]float64, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
			scores[m.ID] = m.Score
		}
		return r.hydrate(snap, ids, scores)
	default:
		return nil, fmt.Errorf("unknown search mode %v", req.Mode)
	}
}

// Stats returns the active snapshot's precomputed aggregate view.
func (r *Router) Stats() (models.StatsSummary, error) {
	snap := r.Current()
	if snap == nil {
		return models.StatsSummary{}, ErrNoCorpus
	}
	return snap.Stats, nil
}

// hydrate resolves ids against the same snapshot the ids came from. A miss
// would mean an index referencing a quote outside its own snapshot, which
// the snapshot construction makes impossible; DPanic guards the invariant.
func (r *Router) hydrate(snap *Snapshot, ids []int, scores map[int]float64) ([]models.SearchResult, error) {
	results := make([]models.SearchResult, 0, len(ids))
	for _, id := range ids {
		q, ok := snap.Store.Get(id)
		if !ok {
			r.logger.DPanic("index returned id missing from its snapshot store", zap.Int("quote_id", id))
			continue
		}
		res := models.SearchResult{
			Text:        q.Text,
			Author:      q.Author,
			Tags:        q.Tags,
			AuthorAbout: q.AuthorAbout,
		}
		if scores != nil {
			score := scores[id]
			res.SimilarityScore = &score
		}
		results = append(results, res)
	}
	return results, nil
}

func clip(ids []int, limit int) []int {
	if limit > 0 && limit < len(ids) {
		return ids[:limit]
	}
	return ids
}
