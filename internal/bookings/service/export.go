package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"

	"github.com/xuri/excelize/v2"
)

const exportBatchSize = 500

// ExportXLSX renders every booking into a spreadsheet, one row per
// booking, seats collapsed into a single cell.
func (s *bookingService) ExportXLSX(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.Internal("Failed to create export sheet", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Booking ID", "Customer", "Phone", "Seats", "Total Price",
		"Booking Date", "Status", "Payment Proof", "Notes", "Created At",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	var offset int64
	for {
		bookings, err := s.repo.FindAll(ctx, exportBatchSize, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to fetch bookings for export", "error", err)
			return nil, apperrors.Internal("Failed to fetch bookings for export", err)
		}
		if len(bookings) == 0 {
			break
		}
		s.fillTableNames(ctx, bookings)

		for _, booking := range bookings {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), booking.ID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), booking.CustomerName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), booking.Phone)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatSeats(booking.Seats))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), booking.TotalPrice)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), booking.BookingDate)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), string(booking.Status))
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), booking.PaymentProof)
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), booking.Notes)
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), booking.CreatedAt.Format(time.RFC3339))
			row++
		}

		if len(bookings) < exportBatchSize {
			break
		}
		offset += int64(len(bookings))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.cfg.Log.Error("Failed to encode export", "error", err)
		return nil, apperrors.Internal("Failed to encode export", err)
	}

	s.cfg.Log.Info("Bookings exported", "rows", row-2)
	return buf.Bytes(), nil
}

func formatSeats(seats []model.BookedSeat) string {
	parts := make([]string, 0, len(seats))
	for _, seat := range seats {
		table := seat.TableName
		if table == "" {
			table = fmt.Sprintf("table %d", seat.TableID)
		}
		parts = append(parts, fmt.Sprintf("%s / %s / seat %d", seat.Zone, table, seat.SeatNumber))
	}
	return strings.Join(parts, "; ")
}
