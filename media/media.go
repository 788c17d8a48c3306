package media

// Media is one provider's successful answer for a reference: a direct,
// playable URL plus descriptive metadata. The arbitration winner has the
// same shape, so a selected candidate is returned as-is.
type Media struct {
	// Direct URL to the downloadable stream/file.
	URL string `json:"url"`
	// Author handle as reported by the provider.
	Author string `json:"author"`
	// Free-form caption or description.
	Description string `json:"description"`
	// Quality tier the producing provider is known to deliver.
	Quality Quality `json:"quality"`
	// Name of the provider that produced this candidate.
	Provider string `json:"provider"`
}

// String returns the author or URL for display.
func (m *Media) String() string {
	if m.Author != "" {
		return m.Author
	}
	return m.URL
}
