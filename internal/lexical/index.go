package lexical

import (
	"sort"
	"strings"

	"github.com/hyperjump/meigen/internal/models"
)

// Index holds inverted structures over three independent axes of a quote set:
// text tokens, author names, and tag names. Built once per corpus snapshot
// and immutable afterwards.
type Index struct {
	// postings maps a normalized text token to quote id to term frequency.
	postings map[string]map[int]int
	authors  []authorEntry
	tags     []tagEntry
}

// authorEntry groups the quotes of one distinct author. Display keeps the
// first-seen original casing; norm is the lowercased form used for matching.
type authorEntry struct {
	norm    string
	display string
	ids     []int
}

type tagEntry struct {
	norm string
	ids  []int
}

// Build constructs the index from quotes. Quote ids must be unique.
func Build(quotes []models.Quote) *Index {
	idx := &Index{
		postings: make(map[string]map[int]int),
	}

	authorByNorm := make(map[string]*authorEntry)
	tagByNorm := make(map[string]*tagEntry)

	for _, q := range quotes {
		for _, tok := range Tokenize(q.Text) {
			m := idx.postings[tok]
			if m == nil {
				m = make(map[int]int)
				idx.postings[tok] = m
			}
			m[q.ID]++
		}

		norm := strings.ToLower(q.Author)
		entry := authorByNorm[norm]
		if entry == nil {
			entry = &authorEntry{norm: norm, display: q.Author}
			authorByNorm[norm] = entry
		}
		entry.ids = append(entry.ids, q.ID)

		seen := make(map[string]bool, len(q.Tags))
		for _, tag := range q.Tags {
			tagNorm := strings.ToLower(tag)
			if seen[tagNorm] {
				continue
			}
			seen[tagNorm] = true
			te := tagByNorm[tagNorm]
			if te == nil {
				te = &tagEntry{norm: tagNorm}
				tagByNorm[tagNorm] = te
			}
			te.ids = append(te.ids, q.ID)
		}
	}

	for _, entry := range authorByNorm {
		sort.Ints(entry.ids)
		idx.authors = append(idx.authors, *entry)
	}
	sort.Slice(idx.authors, func(i, j int) bool {
		if idx.authors[i].norm != idx.authors[j].norm {
			return idx.authors[i].norm < idx.authors[j].norm
		}
		return idx.authors[i].display < idx.authors[j].display
	})

	for _, entry := range tagByNorm {
		sort.Ints(entry.ids)
		idx.tags = append(idx.tags, *entry)
	}
	sort.Slice(idx.tags, func(i, j int) bool { return idx.tags[i].norm < idx.tags[j].norm })

	return idx
}

// Keyword returns ids of quotes whose text contains every token of query
// (conjunctive match). Results are ordered by summed matched term frequency
// descending, ties broken by quote id ascending. An empty or all-punctuation
// query returns no results.
func (idx *Index) Keyword(query string) []int {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	// Intersect postings across all query tokens, accumulating frequency.
	scores := make(map[int]int)
	for i, tok := range tokens {
		posting, ok := idx.postings[tok]
		if !ok {
			return nil
		}
		if i == 0 {
			for id, tf := range posting {
				scores[id] = tf
			}
			continue
		}
		for id := range scores {
			tf, ok := posting[id]
			if !ok {
				delete(scores, id)
				continue
			}
			scores[id] += tf
		}
	}
	if len(scores) == 0 {
		return nil
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Author returns ids of quotes by matching authors. Exact mode is
// case-insensitive equality; otherwise a case-insensitive substring match is
// used. Results are ordered by author name ascending, then quote id ascending.
func (idx *Index) Author(query string, exact bool) []int {
	norm := strings.ToLower(query)
	if norm == "" {
		return nil
	}
	var ids []int
	for _, entry := range idx.authors {
		if exact {
			if entry.norm != norm {
				continue
			}
		} else if !strings.Contains(entry.norm, norm) {
			continue
		}
		ids = append(ids, entry.ids...)
	}
	return ids
}

// Tag returns ids of quotes where any tag matches the query, with the same
// exact/substring semantics as Author. Results are ordered by quote id ascending.
func (idx *Index) Tag(query string, exact bool) []int {
	norm := strings.ToLower(query)
	if norm == "" {
		return nil
	}
	set := make(map[int]bool)
	for _, entry := range idx.tags {
		if exact {
			if entry.norm != norm {
				continue
			}
		} else if !strings.Contains(entry.norm, norm) {
			continue
		}
		for _, id := range entry.ids {
			set[id] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// VocabularySize returns the number of distinct text tokens indexed.
func (idx *Index) VocabularySize() int {
	return len(idx.postings)
}
