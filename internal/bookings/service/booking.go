package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	bookingserrors "tablebook/internal/bookings/errors"
	bookingrepo "tablebook/internal/bookings/repository"
	"tablebook/internal/bookings/validator"
	venueerrors "tablebook/internal/venue/errors"
	venuerepo "tablebook/internal/venue/repository"
	"tablebook/pkg/client"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SlipVerifier checks a payment slip image against the expected amount.
type SlipVerifier interface {
	Verify(ctx context.Context, slipPath string, amount float64) (*client.SlipData, error)
}

// ProofStore persists a verified payment slip and returns its durable URL.
type ProofStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Transition(ctx context.Context, id string, to model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	ConfirmPayment(ctx context.Context, id string, slipPath string, amount *float64) (*model.Booking, error)
	CheckExpired(ctx context.Context) (*model.ExpiryReport, error)
	ExportXLSX(ctx context.Context) ([]byte, error)
}

type bookingService struct {
	repo       bookingrepo.BookingRepository
	tableRepo  venuerepo.TableRepository
	zoneRepo   venuerepo.ZoneRepository
	validator  *validator.BookingValidator
	verifier   SlipVerifier
	proofStore ProofStore
	events     *EventPublisher
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo bookingrepo.BookingRepository,
	tableRepo venuerepo.TableRepository,
	zoneRepo venuerepo.ZoneRepository,
	validator *validator.BookingValidator,
	verifier SlipVerifier,
	proofStore ProofStore,
	events *EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		tableRepo:  tableRepo,
		zoneRepo:   zoneRepo,
		validator:  validator,
		verifier:   verifier,
		proofStore: proofStore,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
	}
}

func newBookingID(now time.Time) string {
	return "BK" + strconv.FormatInt(now.UnixMilli(), 10)
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.CustomerName = sanitizer.NormalizeName(b.CustomerName)
	b.Phone = sanitizer.NormalizePhone(b.Phone)
	b.Notes = sanitizer.NormalizeNotes(b.Notes)
	for i := range b.Seats {
		b.Seats[i].Zone = sanitizer.TrimAndNormalize(b.Seats[i].Zone)
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)

	now := s.now().UTC()
	booking.ID = newBookingID(now)
	booking.Status = model.StatusPendingPayment
	booking.PaymentDeadline = now.Add(s.cfg.PaymentDeadline).Truncate(time.Millisecond)
	booking.PaymentProof = ""

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"customer", booking.CustomerName,
			"error", err,
		)
		return apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		seats, total, err := s.reserveSeats(sessCtx, booking.Seats)
		if err != nil {
			return err
		}
		booking.Seats = seats
		booking.TotalPrice = total
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"customer", booking.CustomerName,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"seats", len(booking.Seats),
		"total_price", booking.TotalPrice,
		"payment_deadline", booking.PaymentDeadline,
	)
	s.events.Publish(ctx, EventBookingCreated, booking)
	return nil
}

// reserveSeats claims every requested seat and prices the reservation. It
// must run inside a transaction: any failed claim aborts the whole batch
// and rolls back the claims that already landed.
func (s *bookingService) reserveSeats(sessCtx mongo.SessionContext, requested []model.BookedSeat) ([]model.BookedSeat, float64, error) {
	type tableKey struct {
		tableID int
		zone    string
	}

	groups := make(map[tableKey][]model.BookedSeat)
	order := make([]tableKey, 0)
	for _, seat := range requested {
		key := tableKey{seat.TableID, seat.Zone}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], seat)
	}

	zones := make(map[string]*model.ZoneConfig)
	result := make([]model.BookedSeat, 0, len(requested))
	var total float64

	for _, key := range order {
		zone, ok := zones[key.zone]
		if !ok {
			var err error
			zone, err = s.zoneRepo.FindByID(sessCtx, key.zone)
			if err != nil {
				if errors.Is(err, venueerrors.ErrZoneNotFound) {
					return nil, 0, apperrors.NotFoundWithID("Zone", key.zone)
				}
				return nil, 0, apperrors.Internal("Failed to resolve zone", err)
			}
			if !zone.IsActive {
				return nil, 0, apperrors.Conflict("Zone is not open for booking: " + key.zone)
			}
			zones[key.zone] = zone
		}

		table, err := s.tableRepo.FindByIDZone(sessCtx, key.tableID, key.zone)
		if err != nil {
			if errors.Is(err, venueerrors.ErrTableNotFound) {
				return nil, 0, apperrors.NotFound(fmt.Sprintf("Table %d in zone %s", key.tableID, key.zone))
			}
			return nil, 0, apperrors.Internal("Failed to resolve table", err)
		}
		if !table.IsActive {
			return nil, 0, apperrors.Conflict(fmt.Sprintf("Table %d in zone %s is not open for booking", key.tableID, key.zone))
		}

		seats := groups[key]
		for _, seat := range seats {
			if err := s.tableRepo.ClaimSeat(sessCtx, key.tableID, key.zone, seat.SeatNumber); err != nil {
				return nil, 0, mapClaimError(err, seat)
			}
			seat.TableName = table.Name
			result = append(result, seat)
		}

		total += priceTableGroup(zone, len(seats), s.cfg.SeatsPerTable)
	}

	return result, total, nil
}

// priceTableGroup prices the seats claimed at one table. A zone that sells
// whole tables only, or a request that takes every seat at the table, pays
// the flat table price; otherwise each seat is priced individually.
func priceTableGroup(zone *model.ZoneConfig, seatCount, seatsPerTable int) float64 {
	if !zone.AllowIndividualSeatBooking || seatCount == seatsPerTable {
		return zone.TablePrice
	}
	return float64(seatCount) * zone.SeatPrice
}

func mapClaimError(err error, seat model.BookedSeat) error {
	switch {
	case errors.Is(err, venueerrors.ErrTableNotFound):
		return apperrors.NotFound(fmt.Sprintf("Table %d in zone %s", seat.TableID, seat.Zone))
	case errors.Is(err, venueerrors.ErrSeatNotFound):
		return apperrors.NotFound(fmt.Sprintf("Seat %d at table %d in zone %s", seat.SeatNumber, seat.TableID, seat.Zone))
	case errors.Is(err, venueerrors.ErrSeatTaken):
		return apperrors.Conflict(fmt.Sprintf("Seat %d at table %d in zone %s is already booked", seat.SeatNumber, seat.TableID, seat.Zone))
	default:
		return apperrors.Internal("Failed to claim seat", err)
	}
}

// releaseSeats frees every seat a booking holds. Missing tables or zones
// are logged and skipped rather than failing the release: a seat that no
// longer exists no longer blocks anyone.
func (s *bookingService) releaseSeats(sessCtx mongo.SessionContext, bookingID string, seats []model.BookedSeat) {
	for _, seat := range seats {
		if seat.Zone == "" {
			s.cfg.Log.Warn("Skipping seat release without zone",
				"booking_id", bookingID,
				"table_id", seat.TableID,
				"seat_number", seat.SeatNumber,
			)
			continue
		}
		if err := s.tableRepo.ReleaseSeat(sessCtx, seat.TableID, seat.Zone, seat.SeatNumber); err != nil {
			s.cfg.Log.Warn("Failed to release seat, skipping",
				"booking_id", bookingID,
				"table_id", seat.TableID,
				"zone", seat.Zone,
				"seat_number", seat.SeatNumber,
				"error", err,
			)
		}
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to get booking by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to list bookings", err)
	}

	s.fillTableNames(ctx, bookings)

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	return bookings, total, nil
}

// fillTableNames backfills seat table names for bookings written before
// names were snapshotted at claim time. Best effort: resolution failures
// leave the name empty.
func (s *bookingService) fillTableNames(ctx context.Context, bookings []*model.Booking) {
	type tableKey struct {
		tableID int
		zone    string
	}
	cache := make(map[tableKey]string)

	for _, booking := range bookings {
		for i, seat := range booking.Seats {
			if seat.TableName != "" || seat.Zone == "" {
				continue
			}
			key := tableKey{seat.TableID, seat.Zone}
			name, ok := cache[key]
			if !ok {
				table, err := s.tableRepo.FindByIDZone(ctx, seat.TableID, seat.Zone)
				if err != nil {
					cache[key] = ""
					continue
				}
				name = table.Name
				cache[key] = name
			}
			booking.Seats[i].TableName = name
		}
	}
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Booking update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var updated *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		if booking.Status != model.StatusPendingPayment {
			return apperrors.Conflict("Only bookings awaiting payment can be edited")
		}

		set := bson.M{}
		if updates.CustomerName != nil {
			set["customer_name"] = sanitizer.NormalizeName(*updates.CustomerName)
		}
		if updates.Phone != nil {
			set["phone"] = sanitizer.NormalizePhone(*updates.Phone)
		}
		if updates.Notes != nil {
			set["notes"] = sanitizer.NormalizeNotes(*updates.Notes)
		}
		if updates.BookingDate != nil {
			set["booking_date"] = *updates.BookingDate
		}

		// Changing seats means redoing the reservation from scratch: the
		// old claims come back, the new set is claimed and repriced.
		if updates.Seats != nil {
			s.releaseSeats(sessCtx, booking.ID, booking.Seats)

			requested := make([]model.BookedSeat, len(updates.Seats))
			copy(requested, updates.Seats)
			for i := range requested {
				requested[i].Zone = sanitizer.TrimAndNormalize(requested[i].Zone)
				requested[i].TableName = ""
			}

			seats, total, err := s.reserveSeats(sessCtx, requested)
			if err != nil {
				return err
			}
			set["seats"] = seats
			set["total_price"] = total
			booking.Seats = seats
			booking.TotalPrice = total
		}

		if len(set) == 0 {
			return apperrors.InvalidInput("No fields to update")
		}

		if err := s.repo.Update(sessCtx, id, set); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}

		if updates.CustomerName != nil {
			booking.CustomerName = set["customer_name"].(string)
		}
		if updates.Phone != nil {
			booking.Phone = set["phone"].(string)
		}
		if updates.Notes != nil {
			booking.Notes = set["notes"].(string)
		}
		if updates.BookingDate != nil {
			booking.BookingDate = *updates.BookingDate
		}
		updated = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking",
			"id", id,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"reserved_seats", updates.Seats != nil,
	)
	return updated, nil
}

// Transition moves a booking to the requested status, enforcing the legal
// transition table. Entering a state that releases seats frees every seat
// the booking holds, in the same transaction as the status write.
func (s *bookingService) Transition(ctx context.Context, id string, to model.BookingStatus) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !to.Valid() {
		return nil, apperrors.InvalidInput("Unknown booking status: " + string(to))
	}

	var updated *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		if !booking.Status.CanTransitionTo(to) {
			return apperrors.InvalidTransition(string(booking.Status), string(to))
		}

		if err := s.repo.UpdateStatus(sessCtx, id, booking.Status, to, nil); err != nil {
			if errors.Is(err, bookingserrors.ErrAlreadyTerminal) {
				return apperrors.InvalidTransition(string(booking.Status), string(to))
			}
			return apperrors.Internal("Failed to update booking status", err)
		}

		if to.ReleasesSeats() {
			s.releaseSeats(sessCtx, booking.ID, booking.Seats)
		}
		booking.Status = to
		updated = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to transition booking",
			"id", id,
			"to", to,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed",
		"id", id,
		"status", to,
	)
	s.events.Publish(ctx, eventForStatus(to), updated)
	return updated, nil
}

func eventForStatus(status model.BookingStatus) string {
	switch status {
	case model.StatusConfirmed:
		return EventBookingConfirmed
	case model.StatusPaymentTimeout:
		return EventBookingExpired
	default:
		return EventBookingCancelled
	}
}

// Cancel moves a pending booking to cancelled and frees its seats.
// Confirmed and terminal bookings cannot be cancelled.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	_, err := s.Transition(ctx, id, model.StatusCancelled)
	return err
}
