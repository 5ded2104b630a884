package model

// ZoneConfig holds per-zone pricing and booking policy. The core reads it
// when pricing a reservation; administrators manage it through the venue
// endpoints.
type ZoneConfig struct {
	ID                         string  `json:"id" bson:"id" validate:"required,min=1,max=50"`
	Name                       string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	IsActive                   bool    `json:"is_active" bson:"is_active"`
	Description                string  `json:"description" bson:"description" validate:"required,max=500"`
	AllowIndividualSeatBooking bool    `json:"allow_individual_seat_booking" bson:"allow_individual_seat_booking"`
	SeatPrice                  float64 `json:"seat_price" bson:"seat_price" validate:"gte=0"`
	TablePrice                 float64 `json:"table_price" bson:"table_price" validate:"gte=0"`
}

type ZoneConfigUpdate struct {
	Name                       *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive                   *bool    `json:"is_active,omitempty"`
	Description                *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	AllowIndividualSeatBooking *bool    `json:"allow_individual_seat_booking,omitempty"`
	SeatPrice                  *float64 `json:"seat_price,omitempty" validate:"omitempty,gte=0"`
	TablePrice                 *float64 `json:"table_price,omitempty" validate:"omitempty,gte=0"`
}
