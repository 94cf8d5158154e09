// Package ingest coordinates the rebuild pipeline: crawl, build a fresh
// snapshot, publish it, and persist the quote archive.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/meigen/internal/lexical"
	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/internal/scraper"
	"github.com/hyperjump/meigen/internal/search"
	"github.com/hyperjump/meigen/internal/semantic"
	"github.com/hyperjump/meigen/internal/stats"
	"github.com/hyperjump/meigen/internal/storage"
	"github.com/hyperjump/meigen/internal/store"
)

// ErrRebuildInProgress is returned when a rebuild is requested while another
// one is still running. Rebuilds never interleave.
var ErrRebuildInProgress = errors.New("a rebuild is already in progress")

// Crawler produces the full, deduplicated quote set of one crawl.
type Crawler interface {
	Crawl(ctx context.Context) ([]models.Quote, scraper.Report, error)
}

// Config tunes the derived-view builds.
type Config struct {
	Semantic  semantic.Options
	StatsTopN int
}

// Orchestrator runs rebuilds. A rebuild builds every derived view from a
// fresh crawl before publishing; on any failure the previously published
// snapshot keeps serving untouched.
type Orchestrator struct {
	crawler Crawler
	archive *storage.Archive // optional; nil disables persistence
	router  *search.Router
	cfg     Config
	logger  *zap.Logger
	running atomic.Bool
}

// New creates an orchestrator. archive may be nil (in-memory only deployment);
// logger may be nil.
func New(crawler Crawler, archive *storage.Archive, router *search.Router, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		crawler: crawler,
		archive: archive,
		router:  router,
		cfg:     cfg,
		logger:  logger,
	}
}

// Rebuild crawls the source and replaces the serving snapshot. Returns the
// quote count of the new snapshot. Only one rebuild runs at a time; a
// concurrent call fails fast with ErrRebuildInProgress. Cancellation is
// honored up to the publish point; a published snapshot is not rolled back.
func (o *Orchestrator) Rebuild(ctx context.Context) (int, error) {
	if !o.running.CompareAndSwap(false, true) {
		return 0, ErrRebuildInProgress
	}
	defer o.running.Store(false)

	runID := uuid.New().String()
	log := o.logger.With(zap.String("run_id", runID))
	log.Info("rebuild started")

	quotes, report, err := o.crawler.Crawl(ctx)
	if err != nil {
		log.Error("rebuild failed during crawl", zap.Error(err))
		return 0, fmt.Errorf("crawl: %w", err)
	}
	log.Info("crawl finished",
		zap.Int("quotes", len(quotes)),
		zap.Int("pages", report.Pages),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", report.Duplicates),
	)

	snap, err := o.buildSnapshot(ctx, quotes)
	if err != nil {
		log.Error("rebuild failed during index build", zap.Error(err))
		return 0, err
	}
	if !snap.Semantic.Available() {
		log.Warn("semantic index unavailable for this corpus; semantic queries return no results")
	}

	o.router.Publish(snap)
	log.Info("snapshot published",
		zap.Int("quotes", len(quotes)),
		zap.Int("semantic_rank", snap.Semantic.Rank()),
	)

	if o.archive != nil {
		// The snapshot is already serving; archive trouble only costs
		// durability across a restart.
		if err := o.archive.ReplaceAll(ctx, quotes); err != nil {
			log.Warn("failed to persist quote archive", zap.Error(err))
		}
	}
	return len(quotes), nil
}

// LoadArchived publishes a snapshot built from the persisted quote set, if
// one exists. Returns the number of quotes loaded (0 with a nil error when
// the archive is empty or persistence is disabled).
func (o *Orchestrator) LoadArchived(ctx context.Context) (int, error) {
	if o.archive == nil {
		return 0, nil
	}
	quotes, err := o.archive.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load archive: %w", err)
	}
	if len(quotes) == 0 {
		return 0, nil
	}
	snap, err := o.buildSnapshot(ctx, quotes)
	if err != nil {
		return 0, err
	}
	o.router.Publish(snap)
	o.logger.Info("published snapshot from archive", zap.Int("quotes", len(quotes)))
	return len(quotes), nil
}

// buildSnapshot derives every view from quotes. The three derived builds are
// independent and run concurrently; the semantic build dominates (SVD) and
// stays off the query path entirely since nothing is shared until Publish.
func (o *Orchestrator) buildSnapshot(ctx context.Context, quotes []models.Quote) (*search.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rebuild cancelled: %w", err)
	}

	snap := &search.Snapshot{Store: store.New(quotes)}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Lexical = lexical.Build(quotes)
		return nil
	})
	g.Go(func() error {
		snap.Semantic = semantic.Build(quotes, o.cfg.Semantic)
		return nil
	})
	g.Go(func() error {
		snap.Stats = stats.Compute(quotes, o.cfg.StatsTopN)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
