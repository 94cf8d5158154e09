package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rawRecord is one quote block as parsed from a listing page, before
// validation and deduplication.
type rawRecord struct {
	Text        string
	Author      string
	AuthorAbout string
	Tags        []string
}

// parsePage extracts quote records and the next-page link from one listing
// page. The next link is returned as found in the document (possibly
// relative); an empty string means the listing is exhausted.
func parsePage(r io.Reader) ([]rawRecord, string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("parse page: %w", err)
	}

	var records []rawRecord
	doc.Find(".quote").Each(func(_ int, sel *goquery.Selection) {
		rec := rawRecord{
			Text:   trimQuoteMarks(sel.Find(".text").First().Text()),
			Author: strings.TrimSpace(sel.Find(".author").First().Text()),
		}
		rec.AuthorAbout, _ = sel.Find(`a[href*="/author/"]`).First().Attr("href")
		sel.Find(".tags .tag").Each(func(_ int, tag *goquery.Selection) {
			if t := strings.TrimSpace(tag.Text()); t != "" {
				rec.Tags = append(rec.Tags, t)
			}
		})
		records = append(records, rec)
	})

	next, _ := doc.Find(".next a").First().Attr("href")
	return records, next, nil
}

// trimQuoteMarks strips surrounding whitespace and typographic or plain
// quote marks from the scraped text.
func trimQuoteMarks(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"“”")
}
