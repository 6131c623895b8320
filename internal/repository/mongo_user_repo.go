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

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a MongoDB UserRepository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(config.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) ListAdvisors(ctx context.Context) ([]model.User, error) {
	return r.find(ctx, bson.M{"role": model.RoleAdvisor})
}

func (r *mongoUserRepository) ListClients(ctx context.Context, advisorID string) ([]model.User, error) {
	return r.find(ctx, bson.M{"assigned_advisor": advisorID, "role": model.RoleUser})
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// AssignAdvisor matches a null or missing assigned_advisor, so only the first
// of two concurrent approvals wins.
func (r *mongoUserRepository) AssignAdvisor(ctx context.Context, userID, advisorID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "assigned_advisor": nil},
		bson.M{"$set": bson.M{"assigned_advisor": advisorID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign advisor: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
