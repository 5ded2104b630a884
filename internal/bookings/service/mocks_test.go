package service

import (
	"context"
	"time"

	"tablebook/internal/bookings/validator"
	"tablebook/pkg/client"
	"tablebook/pkg/config"
	mongotx "tablebook/pkg/db/mongo"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mock booking repository
type mockBookingRepository struct {
	createFunc       func(ctx context.Context, booking *model.Booking) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc      func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	updateFunc       func(ctx context.Context, id string, updates bson.M) error
	deleteFunc       func(ctx context.Context, id string) error
	countFunc        func(ctx context.Context) (int64, error)
	findExpiredFunc  func(ctx context.Context, now time.Time) ([]*model.Booking, error)
	findPendingFunc  func(ctx context.Context, now time.Time) ([]*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error
	transactionFunc  func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, updates bson.M) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindExpired(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	if m.findExpiredFunc != nil {
		return m.findExpiredFunc(ctx, now)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindPending(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	if m.findPendingFunc != nil {
		return m.findPendingFunc(ctx, now)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, set bson.M) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to, set)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.transactionFunc != nil {
		return m.transactionFunc(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock table repository
type mockTableRepository struct {
	createFunc       func(ctx context.Context, table *model.Table) error
	findByIDZoneFunc func(ctx context.Context, id int, zone string) (*model.Table, error)
	claimSeatFunc    func(ctx context.Context, tableID int, zone string, seatNumber int) error
	releaseSeatFunc  func(ctx context.Context, tableID int, zone string, seatNumber int) error
}

func (m *mockTableRepository) Create(ctx context.Context, table *model.Table) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, table)
	}
	return nil
}

func (m *mockTableRepository) FindByIDZone(ctx context.Context, id int, zone string) (*model.Table, error) {
	if m.findByIDZoneFunc != nil {
		return m.findByIDZoneFunc(ctx, id, zone)
	}
	return &model.Table{ID: id, Zone: zone, Name: "Table", IsActive: true}, nil
}

func (m *mockTableRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Table, error) {
	return []*model.Table{}, nil
}

func (m *mockTableRepository) FindByZone(ctx context.Context, zone string) ([]*model.Table, error) {
	return []*model.Table{}, nil
}

func (m *mockTableRepository) Update(ctx context.Context, id int, zone string, updates bson.M) error {
	return nil
}

func (m *mockTableRepository) Delete(ctx context.Context, id int, zone string) error {
	return nil
}

func (m *mockTableRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockTableRepository) ClaimSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	if m.claimSeatFunc != nil {
		return m.claimSeatFunc(ctx, tableID, zone, seatNumber)
	}
	return nil
}

func (m *mockTableRepository) ReleaseSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	if m.releaseSeatFunc != nil {
		return m.releaseSeatFunc(ctx, tableID, zone, seatNumber)
	}
	return nil
}

func (m *mockTableRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock zone repository
type mockZoneRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.ZoneConfig, error)
}

func (m *mockZoneRepository) Create(ctx context.Context, zone *model.ZoneConfig) error {
	return nil
}

func (m *mockZoneRepository) FindByID(ctx context.Context, id string) (*model.ZoneConfig, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.ZoneConfig{
		ID:                         id,
		Name:                       "Zone " + id,
		IsActive:                   true,
		AllowIndividualSeatBooking: true,
		SeatPrice:                  100,
		TablePrice:                 800,
	}, nil
}

func (m *mockZoneRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, error) {
	return []*model.ZoneConfig{}, nil
}

func (m *mockZoneRepository) Update(ctx context.Context, id string, updates bson.M) error {
	return nil
}

func (m *mockZoneRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockZoneRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockZoneRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock slip verifier
type mockVerifier struct {
	verifyFunc func(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error)
}

func (m *mockVerifier) Verify(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, slipPath, amount)
	}
	return &client.SlipData{TransRef: "TX123", Amount: amount}, nil
}

// Mock proof store
type mockProofStore struct {
	uploadFunc func(ctx context.Context, localPath string) (string, error)
}

func (m *mockProofStore) Upload(ctx context.Context, localPath string) (string, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, localPath)
	}
	return "https://cdn.example.com/proofs/slip.jpg", nil
}

func newTestConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:                 log,
		PaymentDeadline:     20 * time.Minute,
		ExpirySweepInterval: 6 * time.Minute,
		SeatsPerTable:       9,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
	}
}

type testDeps struct {
	repo      *mockBookingRepository
	tableRepo *mockTableRepository
	zoneRepo  *mockZoneRepository
	verifier  *mockVerifier
	store     *mockProofStore
	cfg       *config.Config
}

func newTestService(deps *testDeps) *bookingService {
	if deps.repo == nil {
		deps.repo = &mockBookingRepository{}
	}
	if deps.tableRepo == nil {
		deps.tableRepo = &mockTableRepository{}
	}
	if deps.zoneRepo == nil {
		deps.zoneRepo = &mockZoneRepository{}
	}
	if deps.verifier == nil {
		deps.verifier = &mockVerifier{}
	}
	if deps.store == nil {
		deps.store = &mockProofStore{}
	}
	if deps.cfg == nil {
		deps.cfg = newTestConfig()
	}

	return &bookingService{
		repo:       deps.repo,
		tableRepo:  deps.tableRepo,
		zoneRepo:   deps.zoneRepo,
		validator:  validator.NewBookingValidator(deps.cfg.Log),
		verifier:   deps.verifier,
		proofStore: deps.store,
		events:     NewEventPublisher(nil, deps.cfg.Log, "test"),
		cfg:        deps.cfg,
		now:        time.Now,
	}
}
