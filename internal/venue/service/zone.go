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

type ZoneService interface {
	Create(ctx context.Context, zone *model.ZoneConfig) error
	GetByID(ctx context.Context, id string) (*model.ZoneConfig, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, int64, error)
	Update(ctx context.Context, id string, updates *model.ZoneConfigUpdate) error
	Delete(ctx context.Context, id string) error
}

type zoneService struct {
	repo      repository.ZoneRepository
	validator *validator.VenueValidator
	cfg       *config.Config
}

func NewZoneService(
	repo repository.ZoneRepository,
	validator *validator.VenueValidator,
	cfg *config.Config,
) ZoneService {
	return &zoneService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *zoneService) Create(ctx context.Context, zone *model.ZoneConfig) error {
	zone.ID = sanitizer.TrimAndNormalize(zone.ID)
	zone.Name = sanitizer.NormalizeName(zone.Name)
	zone.Description = sanitizer.NormalizeNotes(zone.Description)

	if err := s.validator.ValidateZone(zone); err != nil {
		s.cfg.Log.Warn("Zone validation failed",
			"id", zone.ID,
			"error", err,
		)
		return apperrors.Validation("Zone validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.validatePricing(zone.AllowIndividualSeatBooking, zone.SeatPrice, zone.TablePrice); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, zone); err != nil {
		if errors.Is(err, venueerrors.ErrDuplicateZone) {
			return apperrors.Conflict("Zone with this ID already exists")
		}
		s.cfg.Log.Error("Failed to create zone",
			"id", zone.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to create zone", err)
	}

	s.cfg.Log.Info("Zone created successfully",
		"id", zone.ID,
		"name", zone.Name,
		"allow_individual_seat_booking", zone.AllowIndividualSeatBooking,
	)
	return nil
}

// validatePricing enforces that the price path a zone can actually take is
// priced. Zones selling whole tables only need a table price; zones selling
// individual seats need both.
func (s *zoneService) validatePricing(allowIndividual bool, seatPrice, tablePrice float64) error {
	if tablePrice <= 0 {
		return apperrors.Validation("Table price must be positive", map[string]any{
			"table_price": tablePrice,
		})
	}
	if allowIndividual && seatPrice <= 0 {
		return apperrors.Validation("Seat price must be positive when individual seat booking is allowed", map[string]any{
			"seat_price": seatPrice,
		})
	}
	return nil
}

func (s *zoneService) GetByID(ctx context.Context, id string) (*model.ZoneConfig, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Zone ID cannot be empty")
	}

	zone, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, venueerrors.ErrZoneNotFound) {
			return nil, apperrors.NotFoundWithID("Zone", id)
		}
		s.cfg.Log.Error("Failed to get zone by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve zone", err)
	}

	return zone, nil
}

func (s *zoneService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.ZoneConfig, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	zones, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list zones", "error", err)
		return nil, 0, apperrors.Internal("Failed to list zones", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count zones", "error", err)
		return nil, 0, apperrors.Internal("Failed to count zones", err)
	}

	return zones, total, nil
}

func (s *zoneService) Update(ctx context.Context, id string, updates *model.ZoneConfigUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Zone ID cannot be empty")
	}

	if err := s.validator.ValidateZoneUpdate(updates); err != nil {
		return apperrors.Validation("Zone update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if updates.Name != nil {
		set["name"] = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.IsActive != nil {
		set["is_active"] = *updates.IsActive
	}
	if updates.Description != nil {
		set["description"] = sanitizer.NormalizeNotes(*updates.Description)
	}

	allowIndividual := existing.AllowIndividualSeatBooking
	seatPrice := existing.SeatPrice
	tablePrice := existing.TablePrice
	if updates.AllowIndividualSeatBooking != nil {
		allowIndividual = *updates.AllowIndividualSeatBooking
		set["allow_individual_seat_booking"] = allowIndividual
	}
	if updates.SeatPrice != nil {
		seatPrice = *updates.SeatPrice
		set["seat_price"] = seatPrice
	}
	if updates.TablePrice != nil {
		tablePrice = *updates.TablePrice
		set["table_price"] = tablePrice
	}

	if err := s.validatePricing(allowIndividual, seatPrice, tablePrice); err != nil {
		return err
	}

	if len(set) == 0 {
		return apperrors.InvalidInput("No fields to update")
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		if errors.Is(err, venueerrors.ErrZoneNotFound) {
			return apperrors.NotFoundWithID("Zone", id)
		}
		s.cfg.Log.Error("Failed to update zone",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update zone", err)
	}

	s.cfg.Log.Info("Zone updated successfully", "id", id)
	return nil
}

func (s *zoneService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Zone ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, venueerrors.ErrZoneNotFound) {
			return apperrors.NotFoundWithID("Zone", id)
		}
		s.cfg.Log.Error("Failed to delete zone",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete zone", err)
	}

	s.cfg.Log.Info("Zone deleted successfully", "id", id)
	return nil
}
