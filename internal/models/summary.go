package models

import "qwikstudi-backend/internal/llmtext"

// SummaryResponse wraps the normalized summary with the request echo the
// frontend uses to label the card.
type SummaryResponse struct {
	Summary    string            `json:"summary"`
	Takeaways  []string          `json:"takeaways"`
	KeyTerms   []llmtext.KeyTerm `json:"keyTerms"`
	Length     string            `json:"length"`
	Format     string            `json:"format"`
	SourceName string            `json:"sourceName,omitempty"`
}
