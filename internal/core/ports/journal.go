package ports

import (
	"context"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

// AnalysisRepository persists analysis journal entries.
type AnalysisRepository interface {
	Insert(ctx context.Context, record *domain.AnalysisRecord) error
}

// AnalysisJournal accepts journal entries without blocking the caller.
type AnalysisJournal interface {
	Enqueue(record domain.AnalysisRecord)
}
