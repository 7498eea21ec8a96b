package wordpress

import "encoding/json"

// renderedField is WordPress's `{"rendered": "..."}` wrapper.
type renderedField struct {
	Rendered string `json:"rendered"`
}

// metaFields tolerates the two shapes `meta` shows up in: an object with
// registered fields, or an empty array when the site registered none.
type metaFields struct {
	CompanyName string
}

func (m *metaFields) UnmarshalJSON(b []byte) error {
	var obj struct {
		CompanyName string `json:"_company_name"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		m.CompanyName = obj.CompanyName
	}
	// `"meta": []` and other shapes decode to the zero value.
	return nil
}

type mediaSize struct {
	SourceURL string `json:"source_url"`
}

type mediaPayload struct {
	SourceURL    string `json:"source_url"`
	AltText      string `json:"alt_text"`
	MediaDetails struct {
		Sizes map[string]mediaSize `json:"sizes"`
	} `json:"media_details"`
}

// bestURL prefers the canonical source_url and falls back through the
// rendered sizes, mirroring how inconsistent older site exports are.
func (m mediaPayload) bestURL() string {
	if m.SourceURL != "" {
		return m.SourceURL
	}
	if s, ok := m.MediaDetails.Sizes["full"]; ok && s.SourceURL != "" {
		return s.SourceURL
	}
	if s, ok := m.MediaDetails.Sizes["medium"]; ok && s.SourceURL != "" {
		return s.SourceURL
	}
	return ""
}

type termPayload struct {
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}

type embeddedPayload struct {
	FeaturedMedia []mediaPayload  `json:"wp:featuredmedia"`
	Terms         [][]termPayload `json:"wp:term"`
}

type postPayload struct {
	Title         renderedField    `json:"title"`
	Content       renderedField    `json:"content"`
	Type          string           `json:"type"`
	FeaturedMedia int64            `json:"featured_media"`
	Meta          metaFields       `json:"meta"`
	Embedded      *embeddedPayload `json:"_embedded"`
}
