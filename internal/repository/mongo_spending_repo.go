package repository

import (
	"context"
	"fmt"

	"finance_tracker/internal/config"
	"finance_tracker/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoSpendingRepository struct {
	coll *mongo.Collection
}

// NewMongoSpendingRepository creates a MongoDB SpendingRepository
func NewMongoSpendingRepository(db *mongo.Database) SpendingRepository {
	return &mongoSpendingRepository{coll: db.Collection(config.SpendingsCollection)}
}

func (r *mongoSpendingRepository) Create(ctx context.Context, s *model.Spending) error {
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create spending: %w", err)
	}
	return nil
}

func (r *mongoSpendingRepository) FindByUser(ctx context.Context, userID string, filter model.SpendingFilter) ([]model.Spending, error) {
	query := bson.M{"user": userID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if !filter.Since.IsZero() {
		query["date"] = bson.M{"$gte": filter.Since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query spendings by user: %w", err)
	}
	spendings := []model.Spending{}
	if err := cursor.All(ctx, &spendings); err != nil {
		return nil, fmt.Errorf("failed to decode spendings: %w", err)
	}
	return spendings, nil
}
