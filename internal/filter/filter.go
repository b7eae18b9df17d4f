package filter

import (
	"strings"
	"time"

	"market-search/internal/location"
	"market-search/internal/models"
)

// AvailabilityChecker answers whether a listing is free over a date range.
type AvailabilityChecker interface {
	IsAvailable(kind models.Kind, id int64, start, end time.Time) bool
}

// Engine evaluates filter criteria against normalized listings. Clauses are
// independent and ANDed; a clause whose data is missing on the listing
// fails closed instead of erroring. The engine never sorts — result order
// is whatever the upstream collection presented.
type Engine struct {
	availability AvailabilityChecker
}

// New creates an Engine. A nil checker disables the date clause.
func New(availability AvailabilityChecker) *Engine {
	return &Engine{availability: availability}
}

// Apply filters listings down to those passing every active clause.
func (e *Engine) Apply(listings []models.NormalizedListing, c models.FilterCriteria) []models.NormalizedListing {
	filtered := make([]models.NormalizedListing, 0, len(listings))
	for _, l := range listings {
		if e.Passes(l, c) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// Passes reports whether a single listing satisfies the criteria.
func (e *Engine) Passes(l models.NormalizedListing, c models.FilterCriteria) bool {
	return passesKind(l, c) &&
		location.Matches(l.Location, c.Location) &&
		passesPrice(l, c) &&
		passesCapacity(l, c) &&
		passesAmenities(l, c) &&
		e.passesDates(l, c) &&
		passesFlags(l, c)
}

func passesKind(l models.NormalizedListing, c models.FilterCriteria) bool {
	return c.Kind == "" || c.Kind == models.KindAll || c.Kind == l.Kind
}

func passesPrice(l models.NormalizedListing, c models.FilterCriteria) bool {
	if c.PriceMin != nil && l.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && l.Price > *c.PriceMax {
		return false
	}
	return true
}

func passesCapacity(l models.NormalizedListing, c models.FilterCriteria) bool {
	// No guests requested: clause inactive.
	total := c.TotalGuests()
	if total <= 0 {
		return true
	}
	// Services have no capacity notion and are exempt.
	if l.Kind == models.KindService {
		return true
	}
	// Capacity zero means the field was absent upstream: fail closed.
	return l.Capacity >= total
}

func passesAmenities(l models.NormalizedListing, c models.FilterCriteria) bool {
	if len(c.Amenities) == 0 {
		return true
	}
	// Only properties carry amenities, so a non-empty amenity filter
	// excludes experiences and services by construction.
	have := make(map[string]struct{}, len(l.Amenities))
	for _, a := range l.Amenities {
		have[strings.ToLower(a)] = struct{}{}
	}
	for _, want := range c.Amenities {
		if _, ok := have[strings.ToLower(want)]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) passesDates(l models.NormalizedListing, c models.FilterCriteria) bool {
	if c.DateStart == nil || c.DateEnd == nil {
		return true
	}
	if e.availability == nil {
		return true
	}
	return e.availability.IsAvailable(l.Kind, l.ID, *c.DateStart, *c.DateEnd)
}

func passesFlags(l models.NormalizedListing, c models.FilterCriteria) bool {
	if c.Superhost && !l.Superhost {
		return false
	}
	if c.InstantBook && !l.InstantBook {
		return false
	}
	return true
}
