package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-search/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/experiences", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id": 1, "expTitle": "Sunset Kayak", "pricePerNight": 50}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard())
	raws, err := c.FetchListings(context.Background(), models.KindExperience)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	require.NotNil(t, raws[0].ID)
	assert.Equal(t, int64(1), *raws[0].ID)
	assert.Equal(t, "Sunset Kayak", raws[0].ExpTitle)
}

func TestFetchListingsUnknownKind(t *testing.T) {
	c := New("http://unused", discard())
	_, err := c.FetchListings(context.Background(), models.Kind("bogus"))
	assert.Error(t, err)
}

func TestFetchListingsRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[{"id": 2}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard())
	raws, err := c.FetchListings(context.Background(), models.KindProperty)
	require.NoError(t, err)
	assert.Len(t, raws, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchListingsGivesUpOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, discard())
	_, err := c.FetchListings(ctx, models.KindProperty)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchWishlist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wishlist", r.URL.Path)
		io.WriteString(w, `[{"itemType": "property", "itemId": 7}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard())
	items, err := c.FetchWishlist(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.KindProperty, items[0].ItemType)
	assert.Equal(t, int64(7), items[0].ItemID)
}

func TestConfirmToggle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wishlist/toggle", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"itemType": "service", "itemId": 3}`, string(body))
		io.WriteString(w, `{"wishlisted": true}`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard())
	wishlisted, err := c.ConfirmToggle(context.Background(),
		models.WishlistItem{ItemType: models.KindService, ItemID: 3})
	require.NoError(t, err)
	assert.True(t, wishlisted)
}

func TestConfirmToggleIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, discard())
	_, err := c.ConfirmToggle(context.Background(),
		models.WishlistItem{ItemType: models.KindProperty, ItemID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}
