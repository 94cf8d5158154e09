package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/meigen/internal/models"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"machine", "learning"}, "machine learning"},
		{[]string{"machine learning"}, "machine learning"},
		{[]string{" spaced "}, "spaced"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := buildSearchQuery(tt.args); got != tt.want {
			t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestWriteSearchResults(t *testing.T) {
	score := 0.87
	results := []models.SearchResult{
		{Text: "To be or not to be.", Author: "Shakespeare", Tags: []string{"philosophy"}},
		{Text: "Stay hungry.", Author: "Jobs", SimilarityScore: &score},
	}
	var buf bytes.Buffer
	writeSearchResults(&buf, results)

	out := buf.String()
	if !strings.Contains(out, "Shakespeare") || !strings.Contains(out, "[philosophy]") {
		t.Errorf("output missing fields:\n%s", out)
	}
	if !strings.Contains(out, "0.870") {
		t.Errorf("similarity score not rendered:\n%s", out)
	}
}

func TestWriteSearchResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeSearchResults(&buf, nil)
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("got %q", buf.String())
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != path {
		t.Errorf("resolved path: %q", resolved)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port: %d", cfg.Server.Port)
	}
	// Defaults still fill the rest.
	if cfg.Source.BaseURL == "" || cfg.Index.LSIDimensions == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
