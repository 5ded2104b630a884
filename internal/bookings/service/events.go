package service

import (
	"context"
	"time"

	"tablebook/pkg/kafka"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

// Kafka topics and event types for the booking lifecycle.
const (
	TopicBookingEvents    = "tablebook.bookings"
	TopicBookingEventsDLQ = "tablebook.bookings.dlq"

	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"

	eventSchemaVersion = "1"
	eventsPublishWait  = 5 * time.Second
)

// BookingEvent is the payload published for every lifecycle change.
type BookingEvent struct {
	BookingID  string              `json:"booking_id"`
	Status     model.BookingStatus `json:"status"`
	TotalPrice float64             `json:"total_price"`
	Seats      []model.BookedSeat  `json:"seats"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// EventPublisher pushes booking lifecycle events to Kafka. A nil publisher
// or nil producer disables publishing entirely; delivery failures are
// logged and swallowed so the booking flow never blocks on the broker.
type EventPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
	source   string
}

func NewEventPublisher(producer *kafka.Producer, log *logger.Logger, source string) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		log:      log,
		source:   source,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) {
	if p == nil || p.producer == nil {
		return
	}

	event := BookingEvent{
		BookingID:  booking.ID,
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
		Seats:      booking.Seats,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(p.source).
		Build()

	// Detach from the request context so a cancelled request cannot
	// abort a publish for work that already committed.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventsPublishWait)
	defer cancel()

	if err := p.producer.Publish(publishCtx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// Close shuts down the underlying producer if one is configured.
func (p *EventPublisher) Close() {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Close(); err != nil {
		p.log.Error("Failed to close Kafka producer", "error", err)
	}
}
