package domain

import "time"

// MatrixData is the caller-supplied destiny matrix. Its shape is not
// validated; prompt builders read the keys they know about.
type MatrixData map[string]any

// AnalysisType selects the prompt template.
type AnalysisType string

const (
	AnalysisPersonal      AnalysisType = "personal"
	AnalysisCompatibility AnalysisType = "compatibility"
)

// AnalysisRecord is the journal entry written for every analysis that
// reached the generator, successful or degraded.
type AnalysisRecord struct {
	RequestID     string       `json:"request_id" bson:"request_id"`
	UserID        string       `json:"user_id" bson:"user_id"`
	Email         string       `json:"email,omitempty" bson:"email,omitempty"`
	OrderID       string       `json:"order_id,omitempty" bson:"order_id,omitempty"`
	ServiceID     string       `json:"service_id,omitempty" bson:"service_id,omitempty"`
	AnalysisType  AnalysisType `json:"analysis_type" bson:"analysis_type"`
	Degraded      bool         `json:"degraded" bson:"degraded"`
	Error         string       `json:"error,omitempty" bson:"error,omitempty"`
	PromptChars   int          `json:"prompt_chars" bson:"prompt_chars"`
	AnalysisChars int          `json:"analysis_chars" bson:"analysis_chars"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
}
