package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-search/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}

func TestWishlistRoundTrip(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	items, err := database.LoadWishlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	want := []models.WishlistItem{
		{ItemType: models.KindExperience, ItemID: 2},
		{ItemType: models.KindProperty, ItemID: 1},
	}
	require.NoError(t, database.SaveWishlist(ctx, want))

	items, err = database.LoadWishlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, items)

	// Save replaces, not appends.
	require.NoError(t, database.SaveWishlist(ctx, want[:1]))
	items, err = database.LoadWishlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[:1], items)
}

func TestBookingOverlap(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	require.NoError(t, database.AddBooking(ctx, models.Booking{
		Kind:      models.KindProperty,
		ListingID: 1,
		StartDate: day(t, "2026-09-10"),
		EndDate:   day(t, "2026-09-15"),
	}))

	tests := []struct {
		name    string
		start   string
		end     string
		overlap bool
	}{
		{"identical range", "2026-09-10", "2026-09-15", true},
		{"contained range", "2026-09-11", "2026-09-13", true},
		{"straddles start", "2026-09-08", "2026-09-11", true},
		{"straddles end", "2026-09-14", "2026-09-18", true},
		{"before", "2026-09-01", "2026-09-05", false},
		{"after", "2026-09-20", "2026-09-25", false},
		{"checkout day is free", "2026-09-15", "2026-09-18", false},
		{"ends on checkin day", "2026-09-05", "2026-09-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlap, err := database.HasOverlap(ctx, models.KindProperty, 1,
				day(t, tt.start), day(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.overlap, overlap)
		})
	}
}

func TestBookingOverlapScopedToListing(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	require.NoError(t, database.AddBooking(ctx, models.Booking{
		Kind:      models.KindProperty,
		ListingID: 1,
		StartDate: day(t, "2026-09-10"),
		EndDate:   day(t, "2026-09-15"),
	}))

	overlap, err := database.HasOverlap(ctx, models.KindProperty, 2,
		day(t, "2026-09-10"), day(t, "2026-09-15"))
	require.NoError(t, err)
	assert.False(t, overlap, "different listing id")

	overlap, err = database.HasOverlap(ctx, models.KindExperience, 1,
		day(t, "2026-09-10"), day(t, "2026-09-15"))
	require.NoError(t, err)
	assert.False(t, overlap, "different kind")
}

func TestBookingOverlapIgnoresCancelled(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	require.NoError(t, database.AddBooking(ctx, models.Booking{
		Kind:      models.KindProperty,
		ListingID: 1,
		StartDate: day(t, "2026-09-10"),
		EndDate:   day(t, "2026-09-15"),
		Status:    "cancelled",
	}))

	overlap, err := database.HasOverlap(ctx, models.KindProperty, 1,
		day(t, "2026-09-10"), day(t, "2026-09-15"))
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestListBookings(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	require.NoError(t, database.AddBooking(ctx, models.Booking{
		Kind: models.KindProperty, ListingID: 1,
		StartDate: day(t, "2026-10-01"), EndDate: day(t, "2026-10-05"),
	}))
	require.NoError(t, database.AddBooking(ctx, models.Booking{
		Kind: models.KindProperty, ListingID: 1,
		StartDate: day(t, "2026-09-10"), EndDate: day(t, "2026-09-15"),
	}))

	bookings, err := database.ListBookings(ctx, models.KindProperty, 1)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.True(t, bookings[0].StartDate.Before(bookings[1].StartDate), "oldest first")
	assert.Equal(t, models.BookingStatusConfirmed, bookings[0].Status)
}

func TestSnapshotRoundTrip(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	listings := []models.NormalizedListing{
		{ID: 1, Kind: models.KindProperty, Title: "Villa", Price: 250, Amenities: []string{"wifi"}},
		{ID: 2, Kind: models.KindService, Title: "Deep Clean", Price: 45},
	}
	require.NoError(t, database.SaveSnapshot(ctx, listings))

	got, err := database.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Villa", got[0].Title)
	assert.Equal(t, []string{"wifi"}, got[0].Amenities)
	assert.Equal(t, models.KindService, got[1].Kind)

	count, fetchedAt, err := database.SnapshotInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)
}
