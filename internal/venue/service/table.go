package service

import (
	"context"
	"errors"

	venueerrors "tablebook/internal/venue/errors"
	"tablebook/internal/venue/repository"
	"tablebook/internal/venue/validator"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

type TableService interface {
	Create(ctx context.Context, table *model.Table) error
	GetByIDZone(ctx context.Context, id int, zone string) (*model.Table, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Table, int64, error)
	GetByZone(ctx context.Context, zone string) ([]*model.Table, error)
	Update(ctx context.Context, id int, zone string, updates *model.TableUpdate) error
	Delete(ctx context.Context, id int, zone string) error
	ToggleActive(ctx context.Context, id int, zone string) (*model.Table, error)
}

type tableService struct {
	repo      repository.TableRepository
	zoneRepo  repository.ZoneRepository
	validator *validator.VenueValidator
	cfg       *config.Config
}

func NewTableService(
	repo repository.TableRepository,
	zoneRepo repository.ZoneRepository,
	validator *validator.VenueValidator,
	cfg *config.Config,
) TableService {
	return &tableService{
		repo:      repo,
		zoneRepo:  zoneRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tableService) Create(ctx context.Context, table *model.Table) error {
	table.Zone = sanitizer.TrimAndNormalize(table.Zone)
	table.Name = sanitizer.NormalizeName(table.Name)

	if err := s.validator.ValidateTable(table); err != nil {
		s.cfg.Log.Warn("Table validation failed",
			"id", table.ID,
			"zone", table.Zone,
			"error", err,
		)
		return apperrors.Validation("Table validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.zoneRepo.FindByID(ctx, table.Zone); err != nil {
		if errors.Is(err, venueerrors.ErrZoneNotFound) {
			return apperrors.NotFoundWithID("Zone", table.Zone)
		}
		return apperrors.Internal("Failed to resolve zone for table", err)
	}

	// Tables always start with the full fixed seat set, all free.
	table.Seats = model.NewSeats(s.cfg.SeatsPerTable, table.Zone)

	if err := s.repo.Create(ctx, table); err != nil {
		if errors.Is(err, venueerrors.ErrDuplicateTable) {
			return apperrors.Conflict("Table with this ID already exists in the zone")
		}
		s.cfg.Log.Error("Failed to create table",
			"id", table.ID,
			"zone", table.Zone,
			"error", err,
		)
		return apperrors.Internal("Failed to create table", err)
	}

	s.cfg.Log.Info("Table created successfully",
		"id", table.ID,
		"zone", table.Zone,
		"seats", len(table.Seats),
	)
	return nil
}

func (s *tableService) GetByIDZone(ctx context.Context, id int, zone string) (*model.Table, error) {
	if id <= 0 || zone == "" {
		return nil, apperrors.InvalidInput("Table ID and zone are required")
	}

	table, err := s.repo.FindByIDZone(ctx, id, zone)
	if err != nil {
		if errors.Is(err, venueerrors.ErrTableNotFound) {
			return nil, apperrors.NotFound("Table")
		}
		s.cfg.Log.Error("Failed to get table",
			"id", id,
			"zone", zone,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve table", err)
	}

	return table, nil
}

func (s *tableService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Table, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	tables, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list tables", "error", err)
		return nil, 0, apperrors.Internal("Failed to list tables", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count tables", "error", err)
		return nil, 0, apperrors.Internal("Failed to count tables", err)
	}

	return tables, total, nil
}

func (s *tableService) GetByZone(ctx context.Context, zone string) ([]*model.Table, error) {
	if zone == "" {
		return nil, apperrors.InvalidInput("Zone is required")
	}

	tables, err := s.repo.FindByZone(ctx, zone)
	if err != nil {
		s.cfg.Log.Error("Failed to list tables by zone",
			"zone", zone,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list tables by zone", err)
	}

	return tables, nil
}

func (s *tableService) Update(ctx context.Context, id int, zone string, updates *model.TableUpdate) error {
	if id <= 0 || zone == "" {
		return apperrors.InvalidInput("Table ID and zone are required")
	}

	set := bson.M{}
	if updates.Name != nil {
		name := sanitizer.NormalizeName(*updates.Name)
		if name == "" {
			return apperrors.InvalidInput("Table name cannot be empty")
		}
		set["name"] = name
	}
	if updates.X != nil {
		set["x"] = *updates.X
	}
	if updates.Y != nil {
		set["y"] = *updates.Y
	}

	if len(set) == 0 {
		return apperrors.InvalidInput("No fields to update")
	}

	if err := s.repo.Update(ctx, id, zone, set); err != nil {
		if errors.Is(err, venueerrors.ErrTableNotFound) {
			return apperrors.NotFound("Table")
		}
		s.cfg.Log.Error("Failed to update table",
			"id", id,
			"zone", zone,
			"error", err,
		)
		return apperrors.Internal("Failed to update table", err)
	}

	s.cfg.Log.Info("Table updated successfully", "id", id, "zone", zone)
	return nil
}

func (s *tableService) Delete(ctx context.Context, id int, zone string) error {
	if id <= 0 || zone == "" {
		return apperrors.InvalidInput("Table ID and zone are required")
	}

	table, err := s.GetByIDZone(ctx, id, zone)
	if err != nil {
		return err
	}

	// A table with live reservations cannot be removed; the bookings that
	// hold its seats would dangle.
	for _, seat := range table.Seats {
		if seat.IsBooked {
			return apperrors.Conflict("Table has booked seats and cannot be deleted")
		}
	}

	if err := s.repo.Delete(ctx, id, zone); err != nil {
		if errors.Is(err, venueerrors.ErrTableNotFound) {
			return apperrors.NotFound("Table")
		}
		s.cfg.Log.Error("Failed to delete table",
			"id", id,
			"zone", zone,
			"error", err,
		)
		return apperrors.Internal("Failed to delete table", err)
	}

	s.cfg.Log.Info("Table deleted successfully", "id", id, "zone", zone)
	return nil
}

func (s *tableService) ToggleActive(ctx context.Context, id int, zone string) (*model.Table, error) {
	table, err := s.GetByIDZone(ctx, id, zone)
	if err != nil {
		return nil, err
	}

	newState := !table.IsActive
	if err := s.repo.Update(ctx, id, zone, bson.M{"is_active": newState}); err != nil {
		s.cfg.Log.Error("Failed to toggle table active state",
			"id", id,
			"zone", zone,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to toggle table active state", err)
	}

	table.IsActive = newState
	s.cfg.Log.Info("Table active state toggled",
		"id", id,
		"zone", zone,
		"is_active", newState,
	)
	return table, nil
}
