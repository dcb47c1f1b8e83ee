// Package capability holds the static descriptor of what extraction supports.
package capability

import (
	"webbrowser/internal/config"
	"webbrowser/internal/model"
)

const (
	URI      = "web://browser/capabilities"
	MimeType = "application/json"
)

var features = []string{
	"text_extraction",
	"link_extraction",
	"css_selectors",
	"title_extraction",
}

// Catalog is computed once at startup and never changes.
type Catalog struct {
	resource     model.Resource
	capabilities model.Capabilities
}

func New(cfg *config.Config) *Catalog {
	return &Catalog{
		resource: model.Resource{
			URI:         URI,
			Name:        "Web Browser Capabilities",
			MimeType:    MimeType,
			Description: "Available web browsing capabilities and configuration",
		},
		capabilities: model.Capabilities{
			Features:           append([]string(nil), features...),
			SupportedSelectors: []string{"css"},
			Timeout:            cfg.RequestTimeout,
			UserAgent:          cfg.UserAgent,
		},
	}
}

func (c *Catalog) Resources() []model.Resource {
	return []model.Resource{c.resource}
}

// Read returns the descriptor for uri, or false for any unknown identifier.
func (c *Catalog) Read(uri string) (model.Capabilities, bool) {
	if uri != c.resource.URI {
		return model.Capabilities{}, false
	}
	return c.capabilities, true
}
