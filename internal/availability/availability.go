package availability

import (
	"context"
	"log/slog"
	"time"

	"market-search/internal/models"
)

// queryTimeout bounds the local overlap lookup so a wedged database cannot
// stall the filter pipeline.
const queryTimeout = time.Second

// BookingStore answers overlap queries against confirmed bookings.
type BookingStore interface {
	HasOverlap(ctx context.Context, kind models.Kind, listingID int64, start, end time.Time) (bool, error)
}

// Checker resolves date-range availability against booking records. A
// listing is available over [start, end) when no confirmed booking for it
// overlaps that range. Lookup errors fail closed: the listing is reported
// unavailable rather than the pipeline erroring.
type Checker struct {
	store BookingStore
	log   *slog.Logger
}

// New creates a Checker.
func New(store BookingStore, log *slog.Logger) *Checker {
	return &Checker{store: store, log: log}
}

// IsAvailable reports whether the listing is free over [start, end).
func (c *Checker) IsAvailable(kind models.Kind, listingID int64, start, end time.Time) bool {
	if !end.After(start) {
		// Degenerate range can never be booked.
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	overlap, err := c.store.HasOverlap(ctx, kind, listingID, start, end)
	if err != nil {
		if c.log != nil {
			c.log.Warn("availability: overlap lookup failed",
				"kind", kind, "id", listingID, "error", err)
		}
		return false
	}
	return !overlap
}
