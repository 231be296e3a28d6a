package model

// AnalysisInput is the payload sent to the external content analyzer.
// Text is truncated by the caller before sending; the analyzer never
// receives unbounded input.
type AnalysisInput struct {
	// URL is the page the text came from, for analyzer context.
	URL string `json:"url"`

	// Title is the extracted page title. May be empty.
	Title string `json:"title,omitempty"`

	// Text is the normalized main text of the page.
	Text string `json:"text"`
}

// AnalysisReport is the structured verdict the external analyzer returns
// for a page. All fields beyond Summary are optional; an analyzer may fill
// whatever its model supports.
type AnalysisReport struct {
	// Summary is a short prose summary of the page content.
	Summary string `json:"summary"`

	// KeyPoints lists the main statements of the content.
	KeyPoints []string `json:"key_points,omitempty"`

	// Topics lists subject tags for the content.
	Topics []string `json:"topics,omitempty"`

	// Sentiment is the analyzer's overall tone assessment,
	// typically one of positive, negative, neutral, or mixed.
	Sentiment string `json:"sentiment,omitempty"`

	// Entities lists named entities (people, organizations, places)
	// mentioned in the content.
	Entities []string `json:"entities,omitempty"`
}
