// Package scraper crawls a paginated quote listing site into a materialized,
// deduplicated quote set.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/pkg/resilience"
	"github.com/hyperjump/meigen/pkg/utils"
)

// Config controls the crawl.
type Config struct {
	BaseURL     string
	MaxPages    int
	PageTimeout time.Duration
	PageDelay   time.Duration
	Retry       resilience.RetryConfig
}

// Report summarizes a completed crawl.
type Report struct {
	Pages      int
	Skipped    int // malformed records dropped
	Duplicates int // later (text, author) repeats dropped
}

// Scraper fetches and parses the paginated quote listing.
type Scraper struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a Scraper. logger may be nil.
func New(cfg Config, logger *zap.Logger) *Scraper {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.PageTimeout},
		logger: logger,
	}
}

// Crawl walks the listing from the base URL, following the next-page link
// until the listing is exhausted or MaxPages is reached. Transient fetch
// failures are retried with backoff; exhausting the retry budget aborts the
// whole crawl with no partial result. Malformed records are skipped and
// counted. The returned set is deduplicated on (text, author) with the first
// occurrence winning, and ids are assigned in crawl order starting at 1.
// Cancellation is honored at page boundaries.
func (s *Scraper) Crawl(ctx context.Context) ([]models.Quote, Report, error) {
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, Report{}, fmt.Errorf("invalid base url %q: %w", s.cfg.BaseURL, err)
	}

	var (
		quotes  []models.Quote
		report  Report
		seen    = make(map[models.QuoteKey]bool)
		current = base
	)

	for current != nil {
		if err := ctx.Err(); err != nil {
			return nil, report, fmt.Errorf("crawl cancelled: %w", err)
		}
		if s.cfg.MaxPages > 0 && report.Pages >= s.cfg.MaxPages {
			s.logger.Info("crawl stopped at page limit", zap.Int("max_pages", s.cfg.MaxPages))
			break
		}

		pageURL := current.String()
		s.logger.Debug("fetching page", zap.Int("page", report.Pages+1), zap.String("url", pageURL))
		body, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, report, fmt.Errorf("fetch page %d: %w", report.Pages+1, err)
		}
		report.Pages++

		records, next, err := parsePage(strings.NewReader(body))
		if err != nil {
			return nil, report, fmt.Errorf("parse page %d: %w", report.Pages, err)
		}

		for _, rec := range records {
			if rec.Text == "" || rec.Author == "" {
				report.Skipped++
				continue
			}
			q := models.Quote{
				Text:        rec.Text,
				Author:      rec.Author,
				Tags:        rec.Tags,
				AuthorAbout: resolveRef(current, rec.AuthorAbout),
			}
			if seen[q.Key()] {
				report.Duplicates++
				continue
			}
			seen[q.Key()] = true
			q.ID = len(quotes) + 1
			quotes = append(quotes, q)
			s.logger.Debug("quote collected",
				zap.Int("id", q.ID),
				zap.String("author", q.Author),
				zap.String("text", utils.Truncate(q.Text, 80)),
			)
		}

		if next == "" {
			break
		}
		nextURL, err := current.Parse(next)
		if err != nil {
			return nil, report, fmt.Errorf("bad next link %q on page %d: %w", next, report.Pages, err)
		}
		current = nextURL

		if s.cfg.PageDelay > 0 {
			select {
			case <-time.After(s.cfg.PageDelay):
			case <-ctx.Done():
				return nil, report, fmt.Errorf("crawl cancelled: %w", ctx.Err())
			}
		}
	}

	s.logger.Info("crawl complete",
		zap.Int("pages", report.Pages),
		zap.Int("quotes", len(quotes)),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", report.Duplicates),
	)
	return quotes, report, nil
}

// fetchPage fetches one page, retrying transient failures (network errors,
// 429, 5xx) with backoff. Other non-200 statuses fail immediately.
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (string, error) {
	var body string
	var permanent error
	err := resilience.Retry(ctx, "fetch "+pageURL, s.cfg.Retry, s.logger, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			permanent = err
			return nil
		}
		req.Header.Set("User-Agent", "meigen/1.0 (quote collection)")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("http %d from %s", resp.StatusCode, pageURL)
		}
		if resp.StatusCode != http.StatusOK {
			permanent = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
			return nil
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(b)
		return nil
	})
	if err != nil {
		return "", err
	}
	if permanent != nil {
		return "", permanent
	}
	return body, nil
}

func resolveRef(page *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := page.Parse(href)
	if err != nil {
		return ""
	}
	return ref.String()
}
