package model

import "time"

// TopicRecord is the per-conversation extraction result persisted per date.
type TopicRecord struct {
	Topic             string     `json:"topic"`
	Sentiment         string     `json:"sentiment,omitempty"`
	CustomerSentiment string     `json:"customer_sentiment,omitempty"`
	KeyPhrases        []string   `json:"key_phrases,omitempty"`
	ExtractedAt       *time.Time `json:"extracted_at,omitempty"`
}

// ExtractionState is the lifecycle of a batch extraction run.
type ExtractionState string

const (
	ExtractionIdle      ExtractionState = "idle"
	ExtractionRunning   ExtractionState = "running"
	ExtractionCompleted ExtractionState = "completed"
	ExtractionFailed    ExtractionState = "failed"
)

// ExtractionProgress is a point-in-time snapshot of a batch run.
type ExtractionProgress struct {
	JobID     string          `json:"jobId"`
	Date      string          `json:"date"`
	State     ExtractionState `json:"state"`
	Current   int             `json:"current"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Error     string          `json:"error,omitempty"`
}
