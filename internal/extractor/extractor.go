// Package extractor derives title, text, links and selector matches from
// raw HTML. It performs no I/O.
package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"webbrowser/internal/model"
)

// SelectorError reports a selector that could not be compiled.
type SelectorError struct {
	Field    string
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q for field %q: %v", e.Selector, e.Field, e.Err)
}

func (e *SelectorError) Unwrap() error {
	return e.Err
}

type Result struct {
	// Title is nil when the document has no <title> element.
	Title   *string
	Content model.Content
}

// Extract parses rawHTML leniently and builds the extraction result. The only
// error it returns is a *SelectorError; malformed markup degrades to empty
// results instead.
func Extract(rawHTML string, selectors map[string]string) (*Result, error) {
	matchers, err := compileSelectors(selectors)
	if err != nil {
		return nil, err
	}

	// With scripting off, noscript content is parsed as markup rather than raw text.
	root, err := html.ParseWithOptions(strings.NewReader(rawHTML), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &Result{
		Title: extractTitle(doc),
		Content: model.Content{
			Text:  strippedText(root),
			Links: extractLinks(doc),
		},
	}

	if len(matchers) > 0 {
		result.Content.Fields = make(map[string][]string, len(matchers))
		for field, m := range matchers {
			result.Content.Fields[field] = extractMatches(doc, m)
		}
	}

	return result, nil
}

// compileSelectors validates every selector before any parsing happens.
// Fields are visited in sorted order so the reported field is stable.
func compileSelectors(selectors map[string]string) (map[string]cascadia.Selector, error) {
	if len(selectors) == 0 {
		return nil, nil
	}

	fields := make([]string, 0, len(selectors))
	for field := range selectors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	matchers := make(map[string]cascadia.Selector, len(selectors))
	for _, field := range fields {
		sel := selectors[field]
		compiled, err := cascadia.Compile(sel)
		if err != nil {
			return nil, &SelectorError{Field: field, Selector: sel, Err: err}
		}
		matchers[field] = compiled
	}
	return matchers, nil
}

// fetch the text of the first <title> element anywhere in the tree
func extractTitle(doc *goquery.Document) *string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}
	title := innerText(sel.Get(0))
	return &title
}

// extract every anchor carrying an href, in document order
func extractLinks(doc *goquery.Document) []model.Link {
	links := []model.Link{}
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		href, ok := hrefValue(node)
		if !ok {
			return
		}
		links = append(links, model.Link{
			Text: strings.TrimSpace(innerText(node)),
			Href: href,
		})
	})
	return links
}

func extractMatches(doc *goquery.Document, m cascadia.Selector) []string {
	matches := []string{}
	doc.FindMatcher(m).Each(func(_ int, sel *goquery.Selection) {
		matches = append(matches, strippedText(sel.Get(0)))
	})
	return matches
}
