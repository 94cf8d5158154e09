package models

import (
	"encoding/json"
	"fmt"
)

// NameCount is a (name, count) ranking entry. It marshals as a two-element
// JSON array ["name", count], the shape the stats API exposes.
type NameCount struct {
	Name  string
	Count int
}

// MarshalJSON encodes the entry as ["name", count].
func (nc NameCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{nc.Name, nc.Count})
}

// UnmarshalJSON decodes a ["name", count] pair.
func (nc *NameCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("name-count pair: %w", err)
	}
	if err := json.Unmarshal(pair[0], &nc.Name); err != nil {
		return fmt.Errorf("name-count name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &nc.Count); err != nil {
		return fmt.Errorf("name-count count: %w", err)
	}
	return nil
}

// StatsSummary is the corpus-wide aggregate view, recomputed wholly from each
// snapshot. TotalAuthors and TotalTags count distinct values.
type StatsSummary struct {
	TotalQuotes  int         `json:"total_quotes"`
	TotalAuthors int         `json:"total_authors"`
	TotalTags    int         `json:"total_tags"`
	TopAuthors   []NameCount `json:"top_authors"`
	TopTags      []NameCount `json:"top_tags"`
}
