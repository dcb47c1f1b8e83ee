package model

// Resource is one entry of the resource listing.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Description string `json:"description"`
}

// Capabilities describes what the extraction feature supports.
type Capabilities struct {
	Features           []string `json:"features"`
	SupportedSelectors []string `json:"supported_selectors"`
	Timeout            int      `json:"timeout"`
	UserAgent          string   `json:"user_agent"`
}
