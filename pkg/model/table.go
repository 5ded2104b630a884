package model

// Seat lives inside its table document; it never exists on its own.
// IsBooked is flipped by conditional updates only, which is what makes
// concurrent reservations race safely at the storage layer.
type Seat struct {
	SeatNumber int    `json:"seat_number" bson:"seat_number"`
	Zone       string `json:"zone" bson:"zone"`
	IsBooked   bool   `json:"is_booked" bson:"is_booked"`
}

// Table is a positioned table on the venue floor plan. Table IDs are
// unique within a zone, not globally.
type Table struct {
	ID       int     `json:"id" bson:"id" validate:"required"`
	Zone     string  `json:"zone" bson:"zone" validate:"required,min=1,max=50"`
	Name     string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	IsActive bool    `json:"is_active" bson:"is_active"`
	Seats    []Seat  `json:"seats" bson:"seats"`
}

// TableUpdate carries the editable fields of a table. Seats are never
// edited directly; they change only through reservations and releases.
type TableUpdate struct {
	Name *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

// NewSeats builds the fixed seat set for a freshly created table.
func NewSeats(count int, zone string) []Seat {
	seats := make([]Seat, 0, count)
	for i := 1; i <= count; i++ {
		seats = append(seats, Seat{
			SeatNumber: i,
			Zone:       zone,
			IsBooked:   false,
		})
	}
	return seats
}
