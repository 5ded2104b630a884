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
	TableCollectionName = "Tables"
)

type mongoTableRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	FindByIDZone(ctx context.Context, id int, zone string) (*model.Table, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Table, error)
	FindByZone(ctx context.Context, zone string) ([]*model.Table, error)
	Update(ctx context.Context, id int, zone string, updates bson.M) error
	Delete(ctx context.Context, id int, zone string) error
	Count(ctx context.Context) (int64, error)

	// ClaimSeat atomically flips one free seat to booked. The filter only
	// matches when the seat is still free, so two concurrent claims on the
	// same seat cannot both succeed.
	ClaimSeat(ctx context.Context, tableID int, zone string, seatNumber int) error

	// ReleaseSeat marks a seat free again. Releasing an already free seat
	// is a no-op, which keeps expiry sweeps idempotent.
	ReleaseSeat(ctx context.Context, tableID int, zone string, seatNumber int) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTableRepository(cfg *config.Config) TableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTableRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(TableCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext must not be wrapped, doing so breaks transaction semantics.
func (r *mongoTableRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTableRepository) Create(ctx context.Context, table *model.Table) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, table)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrDuplicateTable, table.ID, table.Zone)
		}
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *mongoTableRepository) FindByIDZone(ctx context.Context, id int, zone string) (*model.Table, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"id": id, "zone": zone}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrTableNotFound, id, zone)
		}
		return nil, fmt.Errorf("failed to find table: %w", err)
	}

	return &table, nil
}

func (r *mongoTableRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Table, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "zone", Value: 1}, {Key: "id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer cursor.Close(ctx)

	var tables []*model.Table
	if err = cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *mongoTableRepository) FindByZone(ctx context.Context, zone string) ([]*model.Table, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"zone": zone}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables by zone: %w", err)
	}
	defer cursor.Close(ctx)

	var tables []*model.Table
	if err = cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *mongoTableRepository) Update(ctx context.Context, id int, zone string, updates bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id, "zone": zone}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrTableNotFound, id, zone)
	}
	return nil
}

func (r *mongoTableRepository) Delete(ctx context.Context, id int, zone string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id, "zone": zone})
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrTableNotFound, id, zone)
	}
	return nil
}

func (r *mongoTableRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tables: %w", err)
	}
	return count, nil
}

func (r *mongoTableRepository) ClaimSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"id":   tableID,
		"zone": zone,
		"seats": bson.M{
			"$elemMatch": bson.M{
				"seat_number": seatNumber,
				"is_booked":   false,
			},
		},
	}
	update := bson.M{
		"$set": bson.M{"seats.$.is_booked": true},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim seat: %w", err)
	}

	if result.MatchedCount == 0 {
		return r.diagnoseClaimFailure(ctx, tableID, zone, seatNumber)
	}

	return nil
}

// diagnoseClaimFailure figures out why a conditional claim matched nothing.
// The claim filter conflates three distinct cases: no such table, no such
// seat, and seat already booked. Callers need to tell them apart.
func (r *mongoTableRepository) diagnoseClaimFailure(ctx context.Context, tableID int, zone string, seatNumber int) error {
	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"id": tableID, "zone": zone}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrTableNotFound, tableID, zone)
		}
		return fmt.Errorf("failed to diagnose seat claim: %w", err)
	}

	for _, seat := range table.Seats {
		if seat.SeatNumber == seatNumber {
			// Seat exists but the conditional claim missed it: either it was
			// booked before we started or another transaction is racing us.
			return fmt.Errorf("%w: seat %d at table %d in zone %s", venueerrors.ErrSeatTaken, seatNumber, tableID, zone)
		}
	}

	return fmt.Errorf("%w: seat %d at table %d in zone %s", venueerrors.ErrSeatNotFound, seatNumber, tableID, zone)
}

func (r *mongoTableRepository) ReleaseSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"id": tableID, "zone": zone}
	update := bson.M{
		"$set": bson.M{"seats.$[s].is_booked": false},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"s.seat_number": seatNumber}},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: table %d in zone %s", venueerrors.ErrTableNotFound, tableID, zone)
	}
	return nil
}

func (r *mongoTableRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
