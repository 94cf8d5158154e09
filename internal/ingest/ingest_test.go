package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/internal/scraper"
	"github.com/hyperjump/meigen/internal/search"
	"github.com/hyperjump/meigen/internal/semantic"
	"github.com/hyperjump/meigen/internal/storage"
)

type fakeCrawler struct {
	quotes []models.Quote
	err    error

	started     chan struct{} // closed when Crawl first begins, if non-nil
	startedOnce sync.Once
	release     chan struct{} // Crawl blocks until closed, if non-nil
}

func (f *fakeCrawler) Crawl(ctx context.Context) ([]models.Quote, scraper.Report, error) {
	if f.started != nil {
		f.startedOnce.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, scraper.Report{}, f.err
	}
	return f.quotes, scraper.Report{Pages: 1}, nil
}

func sampleQuotes() []models.Quote {
	return []models.Quote{
		{ID: 1, Text: "The unexamined life is not worth living.", Author: "Socrates", Tags: []string{"philosophy"}},
		{ID: 2, Text: "A journey of a thousand miles begins with a single step.", Author: "Laozi", Tags: []string{"journey"}},
		{ID: 3, Text: "Simplicity is the ultimate sophistication.", Author: "Leonardo da Vinci", Tags: []string{"design"}},
	}
}

func testOrchestrator(crawler Crawler, archive *storage.Archive) (*Orchestrator, *search.Router) {
	router := search.NewRouter(search.Limits{}, nil)
	cfg := Config{Semantic: semantic.DefaultOptions(), StatsTopN: 10}
	return New(crawler, archive, router, cfg, nil), router
}

func TestRebuild_PublishesSnapshot(t *testing.T) {
	o, router := testOrchestrator(&fakeCrawler{quotes: sampleQuotes()}, nil)

	n, err := o.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("rebuild reported %d quotes", n)
	}

	snap := router.Current()
	if snap == nil {
		t.Fatal("no snapshot published")
	}
	if snap.Store.Len() != 3 {
		t.Errorf("store: %d quotes", snap.Store.Len())
	}
	if snap.Lexical == nil || snap.Semantic == nil {
		t.Fatal("indexes not built")
	}
	if snap.Stats.TotalQuotes != 3 {
		t.Errorf("stats: %+v", snap.Stats)
	}
}

func TestRebuild_CrawlFailureKeepsOldSnapshot(t *testing.T) {
	good := &fakeCrawler{quotes: sampleQuotes()}
	o, router := testOrchestrator(good, nil)
	if _, err := o.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	old := router.Current()

	o.crawler = &fakeCrawler{err: errors.New("source unreachable")}
	if _, err := o.Rebuild(context.Background()); err == nil {
		t.Fatal("expected crawl error")
	}
	if router.Current() != old {
		t.Error("failed rebuild replaced the serving snapshot")
	}
}

func TestRebuild_SingleFlight(t *testing.T) {
	crawler := &fakeCrawler{
		quotes:  sampleQuotes(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o, _ := testOrchestrator(crawler, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Rebuild(context.Background())
		done <- err
	}()

	<-crawler.started
	if _, err := o.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("concurrent rebuild: %v, want ErrRebuildInProgress", err)
	}
	close(crawler.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// The flag is released once the first rebuild finishes.
	if _, err := o.Rebuild(context.Background()); err != nil {
		t.Errorf("follow-up rebuild: %v", err)
	}
}

func TestRebuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o, router := testOrchestrator(&fakeCrawler{quotes: sampleQuotes()}, nil)
	if _, err := o.Rebuild(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
	if router.Current() != nil {
		t.Error("cancelled rebuild published a snapshot")
	}
}

func TestRebuild_PersistsArchive(t *testing.T) {
	archive, err := storage.Open(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	o, _ := testOrchestrator(&fakeCrawler{quotes: sampleQuotes()}, archive)
	if _, err := o.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	n, err := archive.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("archived %d quotes", n)
	}
}

func TestLoadArchived(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quotes.db")
	archive, err := storage.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()
	if err := archive.ReplaceAll(context.Background(), sampleQuotes()); err != nil {
		t.Fatal(err)
	}

	o, router := testOrchestrator(&fakeCrawler{}, archive)
	n, err := o.LoadArchived(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("loaded %d quotes", n)
	}
	if snap := router.Current(); snap == nil || snap.Store.Len() != 3 {
		t.Error("archived snapshot not published")
	}
}

func TestLoadArchived_Empty(t *testing.T) {
	archive, err := storage.Open(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	o, router := testOrchestrator(&fakeCrawler{}, archive)
	n, err := o.LoadArchived(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("loaded %d quotes from empty archive", n)
	}
	if router.Current() != nil {
		t.Error("empty archive published a snapshot")
	}
}

func TestLoadArchived_NoArchive(t *testing.T) {
	o, _ := testOrchestrator(&fakeCrawler{}, nil)
	if n, err := o.LoadArchived(context.Background()); err != nil || n != 0 {
		t.Errorf("got %d, %v", n, err)
	}
}
