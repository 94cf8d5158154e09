package semantic

import (
	"testing"

	"github.com/hyperjump/meigen/internal/models"
)

func corpus() []models.Quote {
	return []models.Quote{
		{ID: 1, Text: "A journey of a thousand miles begins with a single step.", Author: "Laozi"},
		{ID: 2, Text: "The only limit is your mind.", Author: "Unknown"},
		{ID: 3, Text: "The mind is everything. What you think you become.", Author: "Buddha"},
		{ID: 4, Text: "Stars cannot shine without darkness.", Author: "Unknown"},
	}
}

func TestBuild_Available(t *testing.T) {
	idx := Build(corpus(), DefaultOptions())
	if !idx.Available() {
		t.Fatal("index should be available")
	}
	if idx.Rank() <= 0 {
		t.Errorf("rank: %d", idx.Rank())
	}
}

func TestQuery_RoundTrip(t *testing.T) {
	quotes := corpus()
	idx := Build(quotes, DefaultOptions())

	// Querying with a stored quote's own text must rank that quote first
	// with similarity near 1.
	for _, q := range quotes {
		matches := idx.Query(q.Text, 4)
		if len(matches) == 0 {
			t.Fatalf("quote %d: no matches", q.ID)
		}
		if matches[0].ID != q.ID {
			t.Errorf("quote %d: top match is %d (score %v)", q.ID, matches[0].ID, matches[0].Score)
		}
		if matches[0].Score < 0.99 {
			t.Errorf("quote %d: self similarity %v, want ~1", q.ID, matches[0].Score)
		}
	}
}

func TestQuery_ScoresClamped(t *testing.T) {
	idx := Build(corpus(), DefaultOptions())
	matches := idx.Query("mind over matter", 10)
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	for _, m := range matches {
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("score out of range: %v", m.Score)
		}
	}
	// "mind" appears in quotes 2 and 3; both should outrank the others.
	top := map[int]bool{matches[0].ID: true, matches[1].ID: true}
	if !top[2] || !top[3] {
		t.Errorf("expected quotes 2 and 3 on top, got %v", matches)
	}
}

func TestQuery_UnknownVocabulary(t *testing.T) {
	idx := Build(corpus(), DefaultOptions())
	if matches := idx.Query("zyzzyva quux", 5); matches != nil {
		t.Errorf("unknown vocabulary: got %v, want none", matches)
	}
}

func TestQuery_LimitApplied(t *testing.T) {
	idx := Build(corpus(), DefaultOptions())
	matches := idx.Query("mind journey stars", 2)
	if len(matches) > 2 {
		t.Errorf("limit not applied: %d results", len(matches))
	}
}

func TestBuild_DegenerateCorpus(t *testing.T) {
	// All text reduces to nothing after preprocessing.
	quotes := []models.Quote{
		{ID: 1, Text: "to be or not"},
		{ID: 2, Text: "it is"},
	}
	idx := Build(quotes, DefaultOptions())
	if idx.Available() {
		t.Error("degenerate corpus should be unavailable")
	}
	if matches := idx.Query("anything at all", 5); matches != nil {
		t.Errorf("unavailable index returned matches: %v", matches)
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	idx := Build(nil, DefaultOptions())
	if idx.Available() {
		t.Error("empty corpus should be unavailable")
	}
}

func TestBuild_MinDocFreq(t *testing.T) {
	quotes := []models.Quote{
		{ID: 1, Text: "shared words everywhere and unique alpha"},
		{ID: 2, Text: "shared words everywhere and unique beta"},
	}
	idx := Build(quotes, Options{Dimensions: 10, MinDocFreq: 2})
	if !idx.Available() {
		t.Fatal("index should be available")
	}
	// Terms below the document-frequency floor fall out of the vocabulary.
	if matches := idx.Query("alpha", 5); matches != nil {
		t.Errorf("filtered term matched: %v", matches)
	}
	if matches := idx.Query("shared", 5); len(matches) == 0 {
		t.Error("kept term should match")
	}
}

func TestBuild_DimensionClamped(t *testing.T) {
	idx := Build(corpus(), Options{Dimensions: 500, MinDocFreq: 1})
	if !idx.Available() {
		t.Fatal("index should be available")
	}
	if idx.Rank() > 4 {
		t.Errorf("rank %d exceeds document count", idx.Rank())
	}
}
