package db

import (
	"context"
	"fmt"
	"time"

	"market-search/internal/models"
)

const dateLayout = "2006-01-02"

// AddBooking inserts a booking row. Dates are stored as YYYY-MM-DD so
// lexicographic comparison matches chronological order.
func (db *DB) AddBooking(ctx context.Context, b models.Booking) error {
	status := b.Status
	if status == "" {
		status = models.BookingStatusConfirmed
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (kind, listing_id, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?)`,
		string(b.Kind), b.ListingID,
		b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout),
		status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// HasOverlap reports whether any confirmed booking for (kind, listingID)
// overlaps the half-open range [start, end).
func (db *DB) HasOverlap(ctx context.Context, kind models.Kind, listingID int64, start, end time.Time) (bool, error) {
	var count int
	err := db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM bookings
		WHERE kind = ? AND listing_id = ? AND status = ?
		  AND start_date < ? AND end_date > ?`,
		string(kind), listingID, models.BookingStatusConfirmed,
		end.Format(dateLayout), start.Format(dateLayout),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// ListBookings returns all bookings for one listing, oldest first.
func (db *DB) ListBookings(ctx context.Context, kind models.Kind, listingID int64) ([]models.Booking, error) {
	var rows []struct {
		ID        int64  `db:"id"`
		Kind      string `db:"kind"`
		ListingID int64  `db:"listing_id"`
		StartDate string `db:"start_date"`
		EndDate   string `db:"end_date"`
		Status    string `db:"status"`
	}
	err := db.SelectContext(ctx, &rows, `
		SELECT id, kind, listing_id, start_date, end_date, status
		FROM bookings WHERE kind = ? AND listing_id = ?
		ORDER BY start_date`,
		string(kind), listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, r := range rows {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking start date: %w", err)
		}
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking end date: %w", err)
		}
		bookings = append(bookings, models.Booking{
			ID:        r.ID,
			Kind:      models.Kind(r.Kind),
			ListingID: r.ListingID,
			StartDate: start,
			EndDate:   end,
			Status:    r.Status,
		})
	}
	return bookings, nil
}
