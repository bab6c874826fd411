package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

const analysisCollection = "analyses"

// AnalysisRepository stores the analysis journal. Orders are never rolled
// back, so this is the record that ties a billed order to its outcome.
type AnalysisRepository struct {
	coll *mongo.Collection
}

func NewAnalysisRepository(db *mongo.Database) *AnalysisRepository {
	return &AnalysisRepository{coll: db.Collection(analysisCollection)}
}

// EnsureIndexes creates the lookup indexes used for support queries.
func (r *AnalysisRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("create analysis indexes: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Insert(ctx context.Context, record *domain.AnalysisRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}
