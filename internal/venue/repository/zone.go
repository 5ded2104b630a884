package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	venueerrors "tablebook/internal/venue/errors"
	"tablebook/pkg/config"
	mongotx "tablebook/pkg/db/mongo"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ZoneCollectionName = "Zones"
)

type mongoZoneRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ZoneRepository interface {
	Create(ctx context.Context, zone *model.ZoneConfig) error
	FindByID(ctx context.Context, id string) (*model.ZoneConfig, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, error)
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoZoneRepository(cfg *config.Config) ZoneRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoZoneRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(ZoneCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoZoneRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoZoneRepository) Create(ctx context.Context, zone *model.ZoneConfig) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, zone)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", venueerrors.ErrDuplicateZone, zone.ID)
		}
		return fmt.Errorf("failed to create zone: %w", err)
	}
	return nil
}

func (r *mongoZoneRepository) FindByID(ctx context.Context, id string) (*model.ZoneConfig, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var zone model.ZoneConfig
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&zone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", venueerrors.ErrZoneNotFound, id)
		}
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}

	return &zone, nil
}

func (r *mongoZoneRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer cursor.Close(ctx)

	var zones []*model.ZoneConfig
	if err = cursor.All(ctx, &zones); err != nil {
		return nil, fmt.Errorf("failed to decode zones: %w", err)
	}
	return zones, nil
}

func (r *mongoZoneRepository) Update(ctx context.Context, id string, updates bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", venueerrors.ErrZoneNotFound, id)
	}
	return nil
}

func (r *mongoZoneRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", venueerrors.ErrZoneNotFound, id)
	}
	return nil
}

func (r *mongoZoneRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count zones: %w", err)
	}
	return count, nil
}

func (r *mongoZoneRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
