package ports

import (
	"context"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

// TextGenerator turns a single prompt into free text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalyzeInput is the DTO passed from the transport layer to AnalysisService.
type AnalyzeInput struct {
	MatrixData   domain.MatrixData
	AnalysisType domain.AnalysisType
	RequestID    string
	User         *domain.User         // optional, for the journal
	Order        *domain.OrderContext // optional, for the journal
}

// AnalysisResult is what the service hands back to the handler.
// Degraded is set when the generator failed and Text holds the fallback message.
type AnalysisResult struct {
	Text     string
	Degraded bool
}

// AnalysisService runs a matrix analysis.
type AnalysisService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error)
}
