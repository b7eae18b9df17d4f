package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"market-search/internal/models"
)

type stubAvailability struct {
	available map[string]bool
}

func (s *stubAvailability) IsAvailable(kind models.Kind, id int64, start, end time.Time) bool {
	return s.available[string(kind)]
}

func ptr[T any](v T) *T { return &v }

func property(id int64, opts func(*models.NormalizedListing)) models.NormalizedListing {
	l := models.NormalizedListing{
		ID:       id,
		Kind:     models.KindProperty,
		Title:    "Test property",
		Location: "Miami, FL",
		Price:    100,
	}
	if opts != nil {
		opts(&l)
	}
	return l
}

func TestPassesKind(t *testing.T) {
	e := New(nil)
	prop := property(1, nil)

	assert.True(t, e.Passes(prop, models.FilterCriteria{}))
	assert.True(t, e.Passes(prop, models.FilterCriteria{Kind: models.KindAll}))
	assert.True(t, e.Passes(prop, models.FilterCriteria{Kind: models.KindProperty}))
	assert.False(t, e.Passes(prop, models.FilterCriteria{Kind: models.KindService}))
}

func TestPassesPrice(t *testing.T) {
	e := New(nil)
	prop := property(1, func(l *models.NormalizedListing) { l.Price = 250 })

	assert.True(t, e.Passes(prop, models.FilterCriteria{PriceMin: ptr(100.0), PriceMax: ptr(300.0)}))
	assert.True(t, e.Passes(prop, models.FilterCriteria{PriceMin: ptr(250.0), PriceMax: ptr(250.0)}))
	assert.False(t, e.Passes(prop, models.FilterCriteria{PriceMax: ptr(200.0)}))
	assert.False(t, e.Passes(prop, models.FilterCriteria{PriceMin: ptr(300.0)}))
}

func TestPassesCapacity(t *testing.T) {
	e := New(nil)

	withCapacity := property(1, func(l *models.NormalizedListing) { l.Capacity = 4 })
	noCapacity := property(2, nil) // capacity field absent upstream
	service := models.NormalizedListing{ID: 3, Kind: models.KindService, Location: "Miami, FL"}

	twoGuests := models.FilterCriteria{Adults: 1, Children: 1}
	fiveGuests := models.FilterCriteria{Adults: 4, Children: 1}

	assert.True(t, e.Passes(withCapacity, twoGuests))
	assert.False(t, e.Passes(withCapacity, fiveGuests))

	// Missing capacity fails closed, never silently passes.
	assert.False(t, e.Passes(noCapacity, models.FilterCriteria{Adults: 1}))

	// Services are exempt from capacity checks.
	assert.True(t, e.Passes(service, fiveGuests))

	// Infants and pets do not count toward capacity.
	assert.True(t, e.Passes(withCapacity, models.FilterCriteria{Adults: 4, Infants: 2, Pets: 1}))

	// No guests requested: clause inactive even without capacity data.
	assert.True(t, e.Passes(noCapacity, models.FilterCriteria{}))
}

func TestPassesAmenities(t *testing.T) {
	e := New(nil)

	prop := property(1, func(l *models.NormalizedListing) {
		l.Amenities = []string{"wifi", "pool"}
	})
	experience := models.NormalizedListing{ID: 2, Kind: models.KindExperience, Location: "Miami, FL"}

	wifi := models.FilterCriteria{Amenities: []string{"wifi"}}
	both := models.FilterCriteria{Amenities: []string{"wifi", "pool"}}
	sauna := models.FilterCriteria{Amenities: []string{"wifi", "sauna"}}

	assert.True(t, e.Passes(prop, wifi))
	assert.True(t, e.Passes(prop, both))
	assert.False(t, e.Passes(prop, sauna))

	// An empty amenity set can never satisfy a non-empty requirement, so
	// experiences and services are excluded by any amenity filter.
	assert.False(t, e.Passes(experience, wifi))
	assert.True(t, e.Passes(experience, models.FilterCriteria{}))
}

func TestPassesDates(t *testing.T) {
	avail := &stubAvailability{available: map[string]bool{
		string(models.KindProperty): true,
	}}
	e := New(avail)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	dated := models.FilterCriteria{DateStart: &start, DateEnd: &end}

	prop := property(1, nil)
	experience := models.NormalizedListing{ID: 2, Kind: models.KindExperience, Location: "Miami, FL"}

	assert.True(t, e.Passes(prop, dated))
	assert.False(t, e.Passes(experience, dated))

	// Clause inactive without a complete range.
	assert.True(t, e.Passes(experience, models.FilterCriteria{DateStart: &start}))
}

func TestPassesFlags(t *testing.T) {
	e := New(nil)

	plain := property(1, nil)
	super := property(2, func(l *models.NormalizedListing) { l.Superhost = true })
	instant := property(3, func(l *models.NormalizedListing) { l.InstantBook = true })

	assert.False(t, e.Passes(plain, models.FilterCriteria{Superhost: true}))
	assert.True(t, e.Passes(super, models.FilterCriteria{Superhost: true}))
	assert.False(t, e.Passes(plain, models.FilterCriteria{InstantBook: true}))
	assert.True(t, e.Passes(instant, models.FilterCriteria{InstantBook: true}))

	// A false flag filter has no effect.
	assert.True(t, e.Passes(plain, models.FilterCriteria{}))
}

func TestApplyEndToEndScenario(t *testing.T) {
	e := New(nil)

	listings := []models.NormalizedListing{
		property(1, func(l *models.NormalizedListing) { l.Price = 100; l.Location = "Miami, FL" }),
		property(2, func(l *models.NormalizedListing) { l.Price = 300; l.Location = "Boston, MA" }),
		property(3, func(l *models.NormalizedListing) { l.Price = 500; l.Location = "Miami, FL" }),
	}

	criteria := models.FilterCriteria{
		PriceMin: ptr(0.0),
		PriceMax: ptr(350.0),
		Location: "miami",
	}

	filtered := e.Apply(listings, criteria)
	assert.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].ID, "only the $100 Miami property passes")
}

func TestApplyPreservesOrder(t *testing.T) {
	e := New(nil)

	listings := []models.NormalizedListing{
		property(3, nil),
		property(1, nil),
		property(2, nil),
	}

	filtered := e.Apply(listings, models.FilterCriteria{})
	ids := []int64{filtered[0].ID, filtered[1].ID, filtered[2].ID}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}
