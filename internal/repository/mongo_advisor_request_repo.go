package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance_tracker/internal/config"
	"finance_tracker/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoAdvisorRequestRepository struct {
	coll *mongo.Collection
}

// NewMongoAdvisorRequestRepository creates a MongoDB AdvisorRequestRepository
func NewMongoAdvisorRequestRepository(db *mongo.Database) AdvisorRequestRepository {
	return &mongoAdvisorRequestRepository{coll: db.Collection(config.AdvisorRequestsCollection)}
}

func (r *mongoAdvisorRequestRepository) Create(ctx context.Context, req *model.AdvisorRequest) error {
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create advisor request: %w", err)
	}
	return nil
}

func (r *mongoAdvisorRequestRepository) findOne(ctx context.Context, filter bson.M) (*model.AdvisorRequest, error) {
	var req model.AdvisorRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find advisor request: %w", err)
	}
	return &req, nil
}

func (r *mongoAdvisorRequestRepository) FindByID(ctx context.Context, id string) (*model.AdvisorRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAdvisorRequestRepository) FindPending(ctx context.Context, userID, advisorID string) (*model.AdvisorRequest, error) {
	return r.findOne(ctx, bson.M{"user": userID, "advisor": advisorID, "status": model.RequestPending})
}

func (r *mongoAdvisorRequestRepository) List(ctx context.Context, filter AdvisorRequestFilter) ([]model.AdvisorRequest, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user"] = filter.UserID
	}
	if filter.AdvisorID != "" {
		query["advisor"] = filter.AdvisorID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query advisor requests: %w", err)
	}
	requests := []model.AdvisorRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode advisor requests: %w", err)
	}
	return requests, nil
}

func (r *mongoAdvisorRequestRepository) Transition(ctx context.Context, id string, from, to model.RequestStatus, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "responded_at": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update advisor request status: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoAdvisorRequestRepository) DeclinePendingForUser(ctx context.Context, userID, exceptID string, at time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user": userID, "status": model.RequestPending, "_id": bson.M{"$ne": exceptID}},
		bson.M{"$set": bson.M{"status": model.RequestDeclined, "responded_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to decline pending advisor requests: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoAdvisorRequestRepository) DeletePending(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID, "status": model.RequestPending})
	if err != nil {
		return false, fmt.Errorf("failed to delete advisor request: %w", err)
	}
	return res.DeletedCount == 1, nil
}
