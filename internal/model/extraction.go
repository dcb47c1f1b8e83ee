package model

import "encoding/json"

type ExtractionRequest struct {
	URL       string            `json:"url"`
	Selectors map[string]string `json:"selectors,omitempty"`
}

type ExtractionResult struct {
	URL        string  `json:"url"`
	Title      *string `json:"title"`
	Content    Content `json:"content"`
	StatusCode int     `json:"status_code"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Content holds the fixed text/links fields plus one list per requested
// selector. It serializes as a single flat object; a selector field named
// "text" or "links" replaces the default entry.
type Content struct {
	Text   string
	Links  []Link
	Fields map[string][]string
}

// Map flattens the content into the shape it is serialized with.
func (c Content) Map() map[string]any {
	links := c.Links
	if links == nil {
		links = []Link{}
	}
	m := map[string]any{
		"text":  c.Text,
		"links": links,
	}
	for key, values := range c.Fields {
		if values == nil {
			values = []string{}
		}
		m[key] = values
	}
	return m
}

func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
