package domain

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// isSyndication reports whether root is an RSS, Atom or RDF document. Some
// mirrors republish the warnings as a news feed instead of the native XML.
func isSyndication(root *xmlNode) bool {
	switch strings.ToLower(root.XMLName.Local) {
	case "rss", "feed", "rdf":
		return true
	}
	return false
}

// parseSyndication maps feed items to raw warnings. Items carry no end time,
// so alerts read this way are listed but never active.
func parseSyndication(doc string) ([]RawWarning, error) {
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, err
	}

	raws := make([]RawWarning, 0, len(feed.Items))
	for _, item := range feed.Items {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		description := item.Description
		if description == "" {
			description = item.Content
		}
		raw := RawWarning{
			Title:      item.Title,
			Signaling:  description,
			RegionText: item.Title + " " + description,
			Created:    item.GUID,
			Start:      stamp(item.PublishedParsed, item.Published),
			Modified:   stamp(item.UpdatedParsed, item.Updated),
		}
		if raw.Created == "" {
			raw.Created = item.Link
		}
		for _, c := range item.Categories {
			if SeverityFromColor(c) != SeverityUnknown {
				raw.ColorName = c
				break
			}
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func stamp(parsed *time.Time, raw string) string {
	if parsed != nil {
		return parsed.UTC().Format(time.RFC3339)
	}
	return raw
}
