package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	venueerrors "tablebook/internal/venue/errors"
	"tablebook/internal/venue/validator"
	"tablebook/pkg/config"
	mongotx "tablebook/pkg/db/mongo"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mock zone repository
type mockZoneRepository struct {
	createFunc   func(ctx context.Context, zone *model.ZoneConfig) error
	findByIDFunc func(ctx context.Context, id string) (*model.ZoneConfig, error)
	updateFunc   func(ctx context.Context, id string, updates bson.M) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockZoneRepository) Create(ctx context.Context, zone *model.ZoneConfig) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, zone)
	}
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
		Description:                "Main floor",
		AllowIndividualSeatBooking: true,
		SeatPrice:                  100,
		TablePrice:                 800,
	}, nil
}

func (m *mockZoneRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, error) {
	return []*model.ZoneConfig{}, nil
}

func (m *mockZoneRepository) Update(ctx context.Context, id string, updates bson.M) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil
}

func (m *mockZoneRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockZoneRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockZoneRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock table repository
type mockTableRepository struct {
	createFunc       func(ctx context.Context, table *model.Table) error
	findByIDZoneFunc func(ctx context.Context, id int, zone string) (*model.Table, error)
	updateFunc       func(ctx context.Context, id int, zone string, updates bson.M) error
	deleteFunc       func(ctx context.Context, id int, zone string) error
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
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, zone, updates)
	}
	return nil
}

func (m *mockTableRepository) Delete(ctx context.Context, id int, zone string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, zone)
	}
	return nil
}

func (m *mockTableRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockTableRepository) ClaimSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	return nil
}

func (m *mockTableRepository) ReleaseSeat(ctx context.Context, tableID int, zone string, seatNumber int) error {
	return nil
}

func (m *mockTableRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func newTestConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:           log,
		SeatsPerTable: 9,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
	}
}

func validZone() *model.ZoneConfig {
	return &model.ZoneConfig{
		ID:                         "A",
		Name:                       "Riverside",
		IsActive:                   true,
		Description:                "Tables along the river",
		AllowIndividualSeatBooking: true,
		SeatPrice:                  100,
		TablePrice:                 800,
	}
}

func newZoneService(repo *mockZoneRepository) ZoneService {
	cfg := newTestConfig()
	return NewZoneService(repo, validator.NewVenueValidator(cfg.Log), cfg)
}

func newTableService(repo *mockTableRepository, zoneRepo *mockZoneRepository) TableService {
	cfg := newTestConfig()
	if zoneRepo == nil {
		zoneRepo = &mockZoneRepository{}
	}
	return NewTableService(repo, zoneRepo, validator.NewVenueValidator(cfg.Log), cfg)
}

func TestCreateZone(t *testing.T) {
	var created *model.ZoneConfig
	service := newZoneService(&mockZoneRepository{
		createFunc: func(ctx context.Context, zone *model.ZoneConfig) error {
			created = zone
			return nil
		},
	})

	if err := service.Create(context.Background(), validZone()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created == nil || created.ID != "A" {
		t.Errorf("expected zone persisted, got %v", created)
	}
}

func TestCreateZonePricingRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(z *model.ZoneConfig)
	}{
		{
			name:   "zero table price",
			mutate: func(z *model.ZoneConfig) { z.TablePrice = 0 },
		},
		{
			name: "individual booking without seat price",
			mutate: func(z *model.ZoneConfig) {
				z.AllowIndividualSeatBooking = true
				z.SeatPrice = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newZoneService(&mockZoneRepository{})

			zone := validZone()
			tt.mutate(zone)

			err := service.Create(context.Background(), zone)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
			}
		})
	}
}

func TestCreateZoneTableOnlyWithoutSeatPrice(t *testing.T) {
	service := newZoneService(&mockZoneRepository{})

	zone := validZone()
	zone.AllowIndividualSeatBooking = false
	zone.SeatPrice = 0

	// Whole-table zones do not need a seat price.
	if err := service.Create(context.Background(), zone); err != nil {
		t.Errorf("expected table-only zone without seat price to be valid, got %v", err)
	}
}

func TestCreateZoneDuplicate(t *testing.T) {
	service := newZoneService(&mockZoneRepository{
		createFunc: func(ctx context.Context, zone *model.ZoneConfig) error {
			return fmt.Errorf("%w: %s", venueerrors.ErrDuplicateZone, zone.ID)
		},
	})

	err := service.Create(context.Background(), validZone())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestUpdateZoneRepricesAgainstExisting(t *testing.T) {
	service := newZoneService(&mockZoneRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ZoneConfig, error) {
			z := validZone()
			z.AllowIndividualSeatBooking = false
			z.SeatPrice = 0
			return z, nil
		},
	})

	// Turning individual booking on while the stored seat price is zero
	// must be rejected.
	allow := true
	err := service.Update(context.Background(), "A", &model.ZoneConfigUpdate{
		AllowIndividualSeatBooking: &allow,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
	}

	// Supplying the seat price in the same update makes it valid.
	price := 150.0
	err = service.Update(context.Background(), "A", &model.ZoneConfigUpdate{
		AllowIndividualSeatBooking: &allow,
		SeatPrice:                  &price,
	})
	if err != nil {
		t.Errorf("expected update with seat price to pass, got %v", err)
	}
}

func TestCreateTableSeedsSeats(t *testing.T) {
	var created *model.Table
	service := newTableService(&mockTableRepository{
		createFunc: func(ctx context.Context, table *model.Table) error {
			created = table
			return nil
		},
	}, nil)

	table := &model.Table{ID: 1, Zone: "A", Name: "Riverside 1", X: 10, Y: 20, IsActive: true}
	if err := service.Create(context.Background(), table); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created == nil {
		t.Fatal("expected table persisted")
	}
	if len(created.Seats) != 9 {
		t.Fatalf("expected 9 seeded seats, got %d", len(created.Seats))
	}
	for i, seat := range created.Seats {
		if seat.SeatNumber != i+1 || seat.IsBooked || seat.Zone != "A" {
			t.Errorf("seat %d: unexpected seed %+v", i, seat)
		}
	}
}

func TestCreateTableUnknownZone(t *testing.T) {
	service := newTableService(&mockTableRepository{}, &mockZoneRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ZoneConfig, error) {
			return nil, venueerrors.ErrZoneNotFound
		},
	})

	table := &model.Table{ID: 1, Zone: "X", Name: "Orphan", IsActive: true}
	err := service.Create(context.Background(), table)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %v", apperrors.CodeNotFound, err)
	}
}

func TestDeleteTableWithBookedSeats(t *testing.T) {
	deleteCalled := false
	service := newTableService(&mockTableRepository{
		findByIDZoneFunc: func(ctx context.Context, id int, zone string) (*model.Table, error) {
			return &model.Table{
				ID: id, Zone: zone, Name: "Busy", IsActive: true,
				Seats: []model.Seat{
					{SeatNumber: 1, Zone: zone, IsBooked: false},
					{SeatNumber: 2, Zone: zone, IsBooked: true},
				},
			}, nil
		},
		deleteFunc: func(ctx context.Context, id int, zone string) error {
			deleteCalled = true
			return nil
		},
	}, nil)

	err := service.Delete(context.Background(), 1, "A")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %v", apperrors.CodeConflict, err)
	}
	if deleteCalled {
		t.Error("table with booked seats must not be deleted")
	}
}

func TestToggleActive(t *testing.T) {
	var savedSet bson.M
	service := newTableService(&mockTableRepository{
		findByIDZoneFunc: func(ctx context.Context, id int, zone string) (*model.Table, error) {
			return &model.Table{ID: id, Zone: zone, Name: "Riverside 1", IsActive: true}, nil
		},
		updateFunc: func(ctx context.Context, id int, zone string, updates bson.M) error {
			savedSet = updates
			return nil
		},
	}, nil)

	table, err := service.ToggleActive(context.Background(), 1, "A")
	if err != nil {
		t.Fatalf("ToggleActive failed: %v", err)
	}
	if table.IsActive {
		t.Error("expected table deactivated")
	}
	if savedSet["is_active"] != false {
		t.Errorf("expected is_active false in update, got %v", savedSet)
	}
}
