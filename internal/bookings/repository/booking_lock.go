package repository

import (
	"context"
	"time"

	"gleam/pkg/config"
	"gleam/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "booking_locks"

// BookingLockRepository provides advisory locks keyed by slot coordinates.
// The unique _id makes Create fail with a duplicate key error while another
// admission for the same slot is in flight; a TTL index on expires_at reaps
// locks orphaned by a crash.
type BookingLockRepository interface {
	Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func (r *mongoBookingLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
