package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "gleam/internal/availability/errors"
	"gleam/pkg/config"
	mongotx "gleam/pkg/db/mongo"
	"gleam/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "availabilities"
)

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AvailabilityRepository interface {
	FindByDate(ctx context.Context, date string) (*model.DayAvailability, error)
	FindAll(ctx context.Context) ([]*model.DayAvailability, error)
	FindFromDate(ctx context.Context, date string) ([]*model.DayAvailability, error)
	Upsert(ctx context.Context, day *model.DayAvailability) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break it.
func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAvailabilityRepository) FindByDate(ctx context.Context, date string) (*model.DayAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var day model.DayAvailability
	err := r.collection.FindOne(ctx, bson.M{"date": date}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, date)
		}
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}
	return &day, nil
}

func (r *mongoAvailabilityRepository) FindAll(ctx context.Context) ([]*model.DayAvailability, error) {
	return r.find(ctx, bson.M{})
}

// FindFromDate returns days with date >= the given date. ISO dates sort
// lexicographically, so a string comparison is enough.
func (r *mongoAvailabilityRepository) FindFromDate(ctx context.Context, date string) ([]*model.DayAvailability, error) {
	return r.find(ctx, bson.M{"date": bson.M{"$gte": date}})
}

func (r *mongoAvailabilityRepository) find(ctx context.Context, filter bson.M) ([]*model.DayAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availabilities: %w", err)
	}
	defer cursor.Close(ctx)

	days := make([]*model.DayAvailability, 0)
	if err = cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("failed to decode availabilities: %w", err)
	}
	return days, nil
}

// Upsert replaces the day's grid wholesale, keyed by date. Returns true
// when a new document was created.
func (r *mongoAvailabilityRepository) Upsert(ctx context.Context, day *model.DayAvailability) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"date": day.Date}
	update := bson.M{
		"$set": bson.M{
			"date":    day.Date,
			"dayName": day.DayName,
			"slots":   day.Slots,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert availability: %w", err)
	}
	return result.UpsertedCount > 0, nil
}

func (r *mongoAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
