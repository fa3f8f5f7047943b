package translation

import "time"

type TranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
}

// HistoryEntry is one finished translation. Source is the detected language
// when the caller asked for auto detection.
type HistoryEntry struct {
	ID             string    `json:"id"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	Source         string    `json:"source"`
	Target         string    `json:"target"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
