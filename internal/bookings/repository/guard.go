package repository

import (
	"context"
	"fmt"
	"time"

	"vizin/pkg/config"
	mongotx "vizin/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GuardCollectionName = "Booking_guards"

// PropertyGuardRepository serializes booking writes per property. Touching the
// guard inside a transaction makes two concurrent transactions on the same
// property write-conflict, so the driver retries the later one against the
// committed state.
type PropertyGuardRepository interface {
	Touch(ctx context.Context, propertyID string) error
}

type mongoPropertyGuardRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewPropertyGuardRepository(cfg *config.Config) PropertyGuardRepository {
	return &mongoPropertyGuardRepository{
		collection: cfg.Database().Collection(GuardCollectionName),
		timeout:    cfg.MongoQueryTimeout,
	}
}

func (r *mongoPropertyGuardRepository) Touch(ctx context.Context, propertyID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": propertyID},
		bson.M{
			"$inc":         bson.M{"version": 1},
			"$currentDate": bson.M{"updated_at": true},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to touch property guard: %w", err)
	}
	return nil
}
