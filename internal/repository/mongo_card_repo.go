package repository

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/config"
	"finance_tracker/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoCardRepository struct {
	coll *mongo.Collection
}

// NewMongoCardRepository creates a MongoDB CardRepository
func NewMongoCardRepository(db *mongo.Database) CardRepository {
	return &mongoCardRepository{coll: db.Collection(config.CardsCollection)}
}

func (r *mongoCardRepository) Create(ctx context.Context, card *model.Card) error {
	if _, err := r.coll.InsertOne(ctx, card); err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *mongoCardRepository) FindByID(ctx context.Context, id string) (*model.Card, error) {
	var card model.Card
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&card); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card by ID: %w", err)
	}
	return &card, nil
}

func (r *mongoCardRepository) ListByUser(ctx context.Context, userID string) ([]model.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by user: %w", err)
	}
	cards := []model.Card{}
	if err := cursor.All(ctx, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}
	return cards, nil
}

func (r *mongoCardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
