package domain

// ExtractedRecord is the distilled content of a single feed item.
// Empty strings mean the field was absent in the markup.
type ExtractedRecord struct {
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
	Author   string `json:"author"`
}

// Inert reports whether the record carries nothing worth analyzing.
// Author alone never justifies a backend call.
func (r ExtractedRecord) Inert() bool {
	return r.ImageURL == "" && r.Text == ""
}
