// Package goquery extracts anchor targets from static HTML.
package goquery

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/brawl"
)

// ExtractHrefs parses an HTML document and returns the href of every anchor
// that has one, in document order.
//
// Each href is resolved against the document base the way a browser resolves
// the anchor's href property: against the first <base href> if present,
// otherwise against pageURL. Fragments, query strings and non-HTTP schemes
// are preserved; an href that cannot be parsed is returned as written.
func ExtractHrefs(r io.Reader, pageURL string) ([]string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, brawl.Errorf(brawl.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, brawl.Errorf(brawl.EFETCH, "failed to parse HTML: %v", err)
	}

	base := documentBase(doc, page)

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		links = append(links, resolveHref(base, href))
	})
	return links, nil
}

// documentBase returns the URL that relative hrefs resolve against.
func documentBase(doc *goquery.Document, page *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return page
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return page
	}
	return page.ResolveReference(ref)
}

// resolveHref resolves href against base, leaving it untouched if it does not
// parse as a URL reference. An empty fragment ("page.html#", "#") is kept,
// as url.URL cannot represent one.
func resolveHref(base *url.URL, href string) string {
	trimmed := strings.TrimSpace(href)
	ref, err := url.Parse(trimmed)
	if err != nil {
		return href
	}
	resolved := base.ResolveReference(ref).String()
	if strings.Contains(trimmed, "#") && !strings.Contains(resolved, "#") {
		resolved += "#"
	}
	return resolved
}
