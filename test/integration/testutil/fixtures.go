package testutil

import (
	"tablebook/pkg/model"
)

type ZoneBuilder struct {
	zone model.ZoneConfig
}

func NewZoneBuilder(id string) *ZoneBuilder {
	return &ZoneBuilder{
		zone: model.ZoneConfig{
			ID:                         id,
			Name:                       "Zone " + id,
			IsActive:                   true,
			Description:                "Test zone",
			AllowIndividualSeatBooking: true,
			SeatPrice:                  100,
			TablePrice:                 800,
		},
	}
}

func (b *ZoneBuilder) WithName(name string) *ZoneBuilder {
	b.zone.Name = name
	return b
}

func (b *ZoneBuilder) TableOnly(tablePrice float64) *ZoneBuilder {
	b.zone.AllowIndividualSeatBooking = false
	b.zone.SeatPrice = 0
	b.zone.TablePrice = tablePrice
	return b
}

func (b *ZoneBuilder) WithPrices(seatPrice, tablePrice float64) *ZoneBuilder {
	b.zone.SeatPrice = seatPrice
	b.zone.TablePrice = tablePrice
	return b
}

func (b *ZoneBuilder) Inactive() *ZoneBuilder {
	b.zone.IsActive = false
	return b
}

func (b *ZoneBuilder) Build() model.ZoneConfig {
	return b.zone
}

type TableBuilder struct {
	table model.Table
}

func NewTableBuilder(id int, zone string) *TableBuilder {
	return &TableBuilder{
		table: model.Table{
			ID:       id,
			Zone:     zone,
			Name:     "Table",
			X:        10,
			Y:        20,
			IsActive: true,
		},
	}
}

func (b *TableBuilder) WithName(name string) *TableBuilder {
	b.table.Name = name
	return b
}

func (b *TableBuilder) At(x, y float64) *TableBuilder {
	b.table.X = x
	b.table.Y = y
	return b
}

func (b *TableBuilder) Build() model.Table {
	return b.table
}

type BookingBuilder struct {
	booking model.Booking
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		booking: model.Booking{
			CustomerName: "Test Customer",
			Phone:        "0812345678",
			BookingDate:  "2026-12-31",
			Seats: []model.BookedSeat{
				{TableID: 1, Zone: "A", SeatNumber: 1},
			},
		},
	}
}

func (b *BookingBuilder) WithCustomer(name, phone string) *BookingBuilder {
	b.booking.CustomerName = name
	b.booking.Phone = phone
	return b
}

func (b *BookingBuilder) WithSeats(seats ...model.BookedSeat) *BookingBuilder {
	b.booking.Seats = seats
	return b
}

func (b *BookingBuilder) WithDate(date string) *BookingBuilder {
	b.booking.BookingDate = date
	return b
}

func (b *BookingBuilder) Build() model.Booking {
	return b.booking
}

func Seat(tableID int, zone string, seatNumber int) model.BookedSeat {
	return model.BookedSeat{TableID: tableID, Zone: zone, SeatNumber: seatNumber}
}
