package config

import (
	"context"
	"fmt"
	"time"

	"finance_tracker/internal/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// Collection names shared by the mongo repositories.
const (
	UsersCollection           = "people"
	CardsCollection           = "cards"
	SpendingsCollection       = "spendings"
	AdvisorRequestsCollection = "advisor_requests"
)

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	logger.Get().Info("successfully connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

// EnsureIndexes creates the indexes the repositories query by.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "assigned_advisor", Value: 1}}},
		},
		CardsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		SpendingsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}}},
		},
		AdvisorRequestsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "advisor", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "advisor", Value: 1}, {Key: "requested_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
