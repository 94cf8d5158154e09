// Package stats derives corpus-wide aggregates from a quote set.
package stats

import (
	"sort"
	"strings"

	"github.com/hyperjump/meigen/internal/models"
)

// Compute builds a StatsSummary from quotes in a single pass. Top lists are
// ordered by count descending; ties keep first-seen order so repeated
// computations over the same snapshot are identical. Pure function: safe to
// call concurrently with queries.
func Compute(quotes []models.Quote, topN int) models.StatsSummary {
	if topN <= 0 {
		topN = 10
	}

	authorCounts := make(map[string]int)
	tagCounts := make(map[string]int)
	var authorOrder, tagOrder []string

	for _, q := range quotes {
		if _, ok := authorCounts[q.Author]; !ok {
			authorOrder = append(authorOrder, q.Author)
		}
		authorCounts[q.Author]++

		seen := make(map[string]bool, len(q.Tags))
		for _, tag := range q.Tags {
			norm := strings.ToLower(tag)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			if _, ok := tagCounts[norm]; !ok {
				tagOrder = append(tagOrder, norm)
			}
			tagCounts[norm]++
		}
	}

	return models.StatsSummary{
		TotalQuotes:  len(quotes),
		TotalAuthors: len(authorCounts),
		TotalTags:    len(tagCounts),
		TopAuthors:   topCounts(authorOrder, authorCounts, topN),
		TopTags:      topCounts(tagOrder, tagCounts, topN),
	}
}

// topCounts ranks names by count descending. order carries first-seen
// positions for the deterministic tie-break.
func topCounts(order []string, counts map[string]int, topN int) []models.NameCount {
	firstSeen := make(map[string]int, len(order))
	for i, name := range order {
		firstSeen[name] = i
	}
	ranked := make([]models.NameCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, models.NameCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Name] < firstSeen[ranked[j].Name]
	})
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked
}
