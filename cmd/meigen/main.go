// Package main is the Meigen CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/meigen/internal/config"
	"github.com/hyperjump/meigen/internal/ingest"
	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/internal/scraper"
	"github.com/hyperjump/meigen/internal/search"
	"github.com/hyperjump/meigen/internal/semantic"
	"github.com/hyperjump/meigen/internal/server"
	"github.com/hyperjump/meigen/internal/storage"
	"github.com/hyperjump/meigen/pkg/resilience"
	"github.com/hyperjump/meigen/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/meigen/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "meigen server" from the project dir uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "scrape":
		runScrape()
	case "search":
		runSearch()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("meigen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	scrapeOnStart := fs.Bool("scrape", false, "run a scrape immediately after startup")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	archive, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open quote archive", zap.Error(err))
	}
	defer archive.Close()

	crawler := scraper.New(scraper.Config{
		BaseURL:     cfg.Source.BaseURL,
		MaxPages:    cfg.Source.MaxPages,
		PageTimeout: cfg.Source.PageTimeout.Std(),
		PageDelay:   cfg.Source.PageDelay.Std(),
		Retry: resilience.RetryConfig{
			MaxAttempts:  cfg.Source.Retry.MaxAttempts,
			InitialDelay: cfg.Source.Retry.InitialDelay.Std(),
			MaxDelay:     cfg.Source.Retry.MaxDelay.Std(),
		},
	}, logger)

	router := search.NewRouter(search.Limits{
		Default: cfg.Search.DefaultLimit,
		Max:     cfg.Search.MaxLimit,
	}, logger)
	orch := ingest.New(crawler, archive, router, ingest.Config{
		Semantic: semantic.Options{
			Dimensions: cfg.Index.LSIDimensions,
			MinDocFreq: cfg.Index.MinDocFreq,
		},
		StatsTopN: cfg.Stats.TopN,
	}, logger)

	if n, err := orch.LoadArchived(context.Background()); err != nil {
		logger.Warn("failed to restore archived corpus", zap.Error(err))
	} else if n > 0 {
		logger.Info("restored corpus from archive", zap.Int("quotes", n))
	}

	if *scrapeOnStart {
		go func() {
			if _, err := orch.Rebuild(context.Background()); err != nil {
				logger.Error("startup scrape failed", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(router, orch, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runScrape() {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Post(*serverURL+"/api/scrape", "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var out struct {
		Success     bool   `json:"success"`
		TotalQuotes int    `json:"total_quotes"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	if !out.Success {
		fmt.Fprintf(os.Stderr, "Scrape failed (%d): %s\n", resp.StatusCode, out.Message)
		os.Exit(1)
	}
	fmt.Println(out.Message)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	searchType := fs.String("type", "keyword", "search type: keyword, author, tag, or semantic")
	exact := fs.Bool("exact", false, "exact matching (author and tag search)")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: meigen search [flags] <query>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	query := buildSearchQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	params := url.Values{}
	params.Set("type", *searchType)
	params.Set("query", query)
	params.Set("limit", fmt.Sprint(*limit))
	if *exact {
		params.Set("exact", "true")
	}

	resp, err := http.Get(*serverURL + "/api/search?" + params.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Search failed (%d): %s\n", resp.StatusCode, strings.TrimSpace(string(b)))
		os.Exit(1)
	}

	var out struct {
		Results []models.SearchResult `json:"results"`
		Total   int                   `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeSearchResults(os.Stdout, out.Results)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeSearchResults(w io.Writer, results []models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for i, res := range results {
		fmt.Fprintf(w, "%d. %q\n", i+1, res.Text)
		fmt.Fprintf(w, "   — %s", res.Author)
		if len(res.Tags) > 0 {
			fmt.Fprintf(w, "  [%s]", strings.Join(res.Tags, ", "))
		}
		if res.SimilarityScore != nil {
			fmt.Fprintf(w, "  (%.3f)", *res.SimilarityScore)
		}
		fmt.Fprintln(w)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/stats")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Stats failed (%d): %s\n", resp.StatusCode, strings.TrimSpace(string(b)))
		os.Exit(1)
	}

	var out struct {
		Stats models.StatsSummary `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out.Stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("quotes:   %d\n", out.Stats.TotalQuotes)
		fmt.Printf("authors:  %d\n", out.Stats.TotalAuthors)
		fmt.Printf("tags:     %d\n", out.Stats.TotalTags)
		if len(out.Stats.TopAuthors) > 0 {
			fmt.Println("\ntop authors:")
			for _, a := range out.Stats.TopAuthors {
				fmt.Printf("  %-30s %d\n", a.Name, a.Count)
			}
		}
		if len(out.Stats.TopTags) > 0 {
			fmt.Println("\ntop tags:")
			for _, t := range out.Stats.TopTags {
				fmt.Printf("  %-30s %d\n", t.Name, t.Count)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meigen - quote collection and search service

Usage:
  meigen server [flags]           Start the HTTP server
  meigen scrape [flags]           Trigger a scrape on a running server
  meigen search [flags] <query>   Search the quote corpus
  meigen stats [flags]            Show corpus statistics
  meigen version                  Show version
  meigen help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/meigen/config.yaml)
  --debug            Enable debug logging
  --scrape           Run a scrape immediately after startup

Search Flags:
  --server string    Server URL (default: http://localhost:8080)
  --type string      Search type: keyword, author, tag, or semantic (default: keyword)
  --exact            Exact matching for author and tag search
  --limit int        Number of results (default: 10)
  --output string    Output format: text or json (default: text)

Stats/Scrape Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (stats only)

Examples:
  meigen server --scrape
  meigen scrape
  meigen search inspirational life
  meigen search --type author --exact "Albert Einstein"
  meigen search --type semantic "wisdom about failure"
  meigen stats --output json`)
}
