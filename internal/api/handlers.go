package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"market-search/internal/cache"
	"market-search/internal/catalog"
	"market-search/internal/category"
	"market-search/internal/location"
	"market-search/internal/models"
	"market-search/internal/wishlist"
)

const dateLayout = "2006-01-02"

// BookingLister is the read side of the booking store.
type BookingLister interface {
	ListBookings(ctx context.Context, kind models.Kind, listingID int64) ([]models.Booking, error)
}

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	catalog   *catalog.Catalog
	wishlist  *wishlist.Cache
	bookings  BookingLister
	respCache cache.Cache
	log       *slog.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cat *catalog.Catalog, wl *wishlist.Cache, bookings BookingLister, respCache cache.Cache, log *slog.Logger) *Handlers {
	return &Handlers{
		catalog:   cat,
		wishlist:  wl,
		bookings:  bookings,
		respCache: respCache,
		log:       log,
	}
}

// Search handles GET /api/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria, sortBy, err := parseCriteria(q)
	if err != nil {
		renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := searchCacheKey(q)
	if body, err := h.respCache.Get(r.Context(), key); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	result := h.catalog.Search(criteria, sortBy)

	body, err := json.Marshal(result)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.respCache.Set(r.Context(), key, body, cache.TTLSearch); err != nil {
		h.log.Warn("api: search cache set failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// GetListing handles GET /api/listings/{kind}/{id}
func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := listingIdentity(w, r)
	if !ok {
		return
	}

	l, err := h.catalog.Get(kind, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderError(w, http.StatusNotFound, "listing not found")
			return
		}
		renderError(w, http.StatusInternalServerError, err.Error())
		return
	}

	renderJSON(w, http.StatusOK, l)
}

// ListBookings handles GET /api/listings/{kind}/{id}/bookings
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := listingIdentity(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListBookings(r.Context(), kind, id)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err.Error())
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// FilterOptions handles GET /api/filters/options
func (h *Handlers) FilterOptions(w http.ResponseWriter, r *http.Request) {
	key := cache.KeyPrefixOptions + ":all"
	if body, err := h.respCache.Get(r.Context(), key); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	listings := h.catalog.Listings()

	var priceMin, priceMax *float64
	for _, l := range listings {
		if priceMin == nil || l.Price < *priceMin {
			p := l.Price
			priceMin = &p
		}
		if priceMax == nil || l.Price > *priceMax {
			p := l.Price
			priceMax = &p
		}
	}

	options := map[string]interface{}{
		"categories": category.Defaults,
		"locations":  location.Keys(),
		"price_min":  priceMin,
		"price_max":  priceMax,
		"sorts": []string{
			catalog.SortPriceLowHigh,
			catalog.SortPriceHighLow,
			catalog.SortRating,
		},
	}

	body, err := json.Marshal(options)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.respCache.Set(r.Context(), key, body, cache.TTLOptions); err != nil {
		h.log.Warn("api: options cache set failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// GetWishlist handles GET /api/wishlist
func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	items := h.wishlist.Items()
	renderJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// ToggleWishlist handles POST /api/wishlist/toggle
func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, http.StatusBadRequest, "invalid toggle request body")
		return
	}
	if !req.ItemType.Valid() {
		renderError(w, http.StatusBadRequest, "invalid item type")
		return
	}

	wishlisted := h.wishlist.Toggle(r.Context(), req.ItemType, req.ItemID)
	h.catalog.InvalidateSearchCache(r.Context())

	renderJSON(w, http.StatusOK, map[string]bool{"wishlisted": wishlisted})
}

// TriggerRefresh handles POST /api/refresh
func (h *Handlers) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		renderError(w, http.StatusBadGateway, err.Error())
		return
	}

	n, at := h.catalog.Size()
	renderJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"listings":     n,
		"refreshed_at": at,
	})
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	n, at := h.catalog.Size()
	renderJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"listings":     n,
		"refreshed_at": at,
	})
}

// listingIdentity extracts and validates the {kind}/{id} URL params.
func listingIdentity(w http.ResponseWriter, r *http.Request) (models.Kind, int64, bool) {
	kind := models.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		renderError(w, http.StatusBadRequest, "invalid listing kind")
		return "", 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderError(w, http.StatusBadRequest, "invalid listing ID")
		return "", 0, false
	}

	return kind, id, true
}

// parseCriteria maps query parameters onto filter criteria plus the
// optional sort order.
func parseCriteria(q url.Values) (models.FilterCriteria, string, error) {
	criteria := models.FilterCriteria{
		Location: q.Get("location"),
	}

	if v := q.Get("price_min"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, "", errors.New("invalid price_min")
		}
		criteria.PriceMin = &val
	}
	if v := q.Get("price_max"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, "", errors.New("invalid price_max")
		}
		criteria.PriceMax = &val
	}

	criteria.Adults = parseCount(q.Get("adults"))
	criteria.Children = parseCount(q.Get("children"))
	criteria.Infants = parseCount(q.Get("infants"))
	criteria.Pets = parseCount(q.Get("pets"))

	if v := q.Get("kind"); v != "" {
		kind := models.Kind(v)
		if kind != models.KindAll && !kind.Valid() {
			return criteria, "", errors.New("invalid kind")
		}
		criteria.Kind = kind
	}

	if v := q.Get("amenities"); v != "" {
		criteria.Amenities = strings.Split(v, ",")
	}

	if v := q.Get("date_start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return criteria, "", errors.New("invalid date_start")
		}
		criteria.DateStart = &t
	}
	if v := q.Get("date_end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return criteria, "", errors.New("invalid date_end")
		}
		criteria.DateEnd = &t
	}
	if (criteria.DateStart == nil) != (criteria.DateEnd == nil) {
		return criteria, "", errors.New("date_start and date_end must be set together")
	}
	if criteria.DateStart != nil && !criteria.DateEnd.After(*criteria.DateStart) {
		return criteria, "", errors.New("date_end must be after date_start")
	}

	criteria.Superhost = q.Get("superhost") == "true"
	criteria.InstantBook = q.Get("instant_book") == "true"

	return criteria, q.Get("sort"), nil
}

func parseCount(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// searchCacheKey canonicalizes the query string into a stable cache key.
// url.Values.Encode sorts by key, so equivalent queries collide.
func searchCacheKey(q url.Values) string {
	sum := sha256.Sum256([]byte(q.Encode()))
	return cache.KeyPrefixSearch + ":" + hex.EncodeToString(sum[:16])
}
