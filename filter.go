package brawl

import "strings"

// DefaultHTMLMarker is the substring that marks a link as an HTML page.
const DefaultHTMLMarker = ".html"

// LinkFilter decides which raw hrefs are admitted into a traversal.
//
// A raw href is admissible when it contains the HTML marker, has no fragment
// marker and is not a mailto reference. Matching is plain substring matching:
// no parsing, no normalization, no case-folding. ".htm" does not satisfy the
// ".html" marker.
type LinkFilter struct {
	// Marker is the substring required for a link to count as HTML.
	// Defaults to DefaultHTMLMarker when empty.
	Marker string
}

// NewLinkFilter returns a LinkFilter using marker, or DefaultHTMLMarker if
// marker is empty.
func NewLinkFilter(marker string) LinkFilter {
	return LinkFilter{Marker: marker}
}

// Admissible reports whether a single raw href passes the filter.
func (f LinkFilter) Admissible(raw string) bool {
	marker := f.Marker
	if marker == "" {
		marker = DefaultHTMLMarker
	}
	return strings.Contains(raw, marker) &&
		!strings.Contains(raw, "#") &&
		!strings.Contains(raw, "mailto")
}

// Filter returns the admissible hrefs from raw in their original order.
// Duplicates are kept; deduplication is the visited set's job.
func (f LinkFilter) Filter(raw []string) []string {
	var admitted []string
	for _, link := range raw {
		if f.Admissible(link) {
			admitted = append(admitted, link)
		}
	}
	return admitted
}
