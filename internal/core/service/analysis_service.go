package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/api/metrics"
	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/ports"
)

// FallbackAnalysis is returned to the caller when the generator fails.
const FallbackAnalysis = "Üzgünüm, analizinizi şu anda gerçekleştiremiyorum. Lütfen daha sonra tekrar deneyin."

type analysisService struct {
	gen     ports.TextGenerator
	journal ports.AnalysisJournal
	log     zerolog.Logger
	now     func() time.Time
}

// NewAnalysisService returns an AnalysisService. journal may be nil.
func NewAnalysisService(gen ports.TextGenerator, journal ports.AnalysisJournal, log zerolog.Logger) ports.AnalysisService {
	return &analysisService{
		gen:     gen,
		journal: journal,
		log:     log,
		now:     time.Now,
	}
}

// Analyze builds the prompt and asks the generator for an analysis.
// Generator failures do not surface as errors: the result is marked degraded
// and carries FallbackAnalysis. Errors are returned only when the analysis
// could not be attempted at all.
func (s *analysisService) Analyze(ctx context.Context, in ports.AnalyzeInput) (*ports.AnalysisResult, error) {
	kind := promptKind(in.AnalysisType)

	if s.gen == nil {
		metrics.AnalysesTotal.WithLabelValues(kind, "error").Inc()
		return nil, domain.ErrGeneratorUnavailable
	}

	prompt, err := BuildPrompt(in.MatrixData, in.AnalysisType)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	result := &ports.AnalysisResult{}
	text, genErr := s.gen.Generate(ctx, prompt)
	if genErr != nil {
		s.log.Error().
			Err(genErr).
			Str("request_id", in.RequestID).
			Str("analysis_type", string(in.AnalysisType)).
			Msg("analysis generation failed, returning fallback")
		result.Text = FallbackAnalysis
		result.Degraded = true
		metrics.AnalysesTotal.WithLabelValues(kind, "degraded").Inc()
	} else {
		result.Text = text
		metrics.AnalysesTotal.WithLabelValues(kind, "ok").Inc()
	}

	s.record(in, prompt, result, genErr)
	return result, nil
}

func (s *analysisService) record(in ports.AnalyzeInput, prompt string, res *ports.AnalysisResult, genErr error) {
	if s.journal == nil {
		return
	}

	rec := domain.AnalysisRecord{
		RequestID:     in.RequestID,
		AnalysisType:  in.AnalysisType,
		Degraded:      res.Degraded,
		PromptChars:   len([]rune(prompt)),
		AnalysisChars: len([]rune(res.Text)),
		CreatedAt:     s.now().UTC(),
	}
	if genErr != nil {
		rec.Error = genErr.Error()
	}
	if in.User != nil {
		rec.UserID = in.User.ID
		rec.Email = in.User.Email
	}
	if in.Order != nil {
		rec.OrderID = in.Order.OrderID
		rec.ServiceID = in.Order.Service.IDString()
	}

	s.journal.Enqueue(rec)
}
