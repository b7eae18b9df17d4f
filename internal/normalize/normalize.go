package normalize

import (
	"errors"
	"log/slog"

	"market-search/internal/models"
)

// ErrMalformedRecord marks a raw record without an identity. It is the only
// hard rejection the normalizer produces; every other missing field falls
// back to a default.
var ErrMalformedRecord = errors.New("malformed record: missing id")

// Default cover assets per kind, used when a record carries no images.
const (
	defaultPropertyImage   = "assets/default-listing.jpg"
	defaultExperienceImage = "assets/default-experience.jpg"
	defaultServiceImage    = "assets/default-service.jpg"
)

const defaultLocation = "Unknown"

// WishlistChecker is the read side of the wishlist cache.
type WishlistChecker interface {
	IsWishlisted(kind models.Kind, id int64) bool
}

// Normalize maps one raw upstream record into the canonical listing shape.
// Field synonyms are coalesced in a fixed per-kind order so the contract
// stays auditable: the first non-zero candidate wins, then the default.
func Normalize(raw models.RawListing, kind models.Kind, wl WishlistChecker) (models.NormalizedListing, error) {
	if raw.ID == nil {
		return models.NormalizedListing{}, ErrMalformedRecord
	}

	l := models.NormalizedListing{
		ID:          *raw.ID,
		Kind:        kind,
		Title:       title(raw, kind),
		Location:    location(raw),
		Price:       price(raw, kind),
		Rating:      firstFloat(raw.Rating),
		ReviewCount: firstInt(raw.ReviewCount, raw.Reviews),
		CategoryKey: categoryKey(raw, kind),
	}

	l.Images = raw.Images
	if len(l.Images) == 0 && raw.ImageURL != "" {
		l.Images = []string{raw.ImageURL}
	}
	if len(l.Images) == 0 {
		l.Images = []string{defaultImage(kind)}
	}
	l.CoverImage = l.Images[0]

	switch kind {
	case models.KindProperty:
		l.Capacity = firstInt(raw.MaxGuests)
		l.Amenities = raw.Amenities
		l.InstantBook = firstBool(raw.InstantBook)
	case models.KindExperience:
		l.Capacity = firstInt(raw.MaxParticipants)
	}

	l.Superhost = firstBool(raw.Superhost, raw.IsSuperhost)

	if wl != nil {
		l.IsWishlisted = wl.IsWishlisted(kind, l.ID)
	}

	return l, nil
}

// NormalizeAll maps a raw collection, dropping malformed records with a log
// line instead of failing the batch.
func NormalizeAll(raws []models.RawListing, kind models.Kind, wl WishlistChecker, log *slog.Logger) []models.NormalizedListing {
	out := make([]models.NormalizedListing, 0, len(raws))
	for i, raw := range raws {
		l, err := Normalize(raw, kind, wl)
		if err != nil {
			if log != nil {
				log.Warn("normalize: dropping record", "kind", kind, "index", i, "error", err)
			}
			continue
		}
		out = append(out, l)
	}
	return out
}

func title(raw models.RawListing, kind models.Kind) string {
	switch kind {
	case models.KindExperience:
		return firstString(raw.ExpTitle, raw.Title, raw.Name, "Untitled experience")
	case models.KindService:
		return firstString(raw.ServiceName, raw.Title, raw.Name, "Untitled service")
	default:
		return firstString(raw.Title, raw.Name, "Untitled listing")
	}
}

func location(raw models.RawListing) string {
	if raw.Location != "" {
		return raw.Location
	}
	if raw.City != "" && raw.Country != "" {
		return raw.City + ", " + raw.Country
	}
	return firstString(raw.City, raw.Country, defaultLocation)
}

func price(raw models.RawListing, kind models.Kind) float64 {
	switch kind {
	case models.KindService:
		return firstFloat(raw.PricePerHour, raw.Price)
	default:
		return firstFloat(raw.PricePerNight, raw.Price)
	}
}

func categoryKey(raw models.RawListing, kind models.Kind) string {
	switch kind {
	case models.KindExperience:
		return firstString(raw.Theme, raw.Category)
	case models.KindService:
		return firstString(raw.Trade, raw.Category)
	default:
		return firstString(raw.PropertyType, raw.Category)
	}
}

func defaultImage(kind models.Kind) string {
	switch kind {
	case models.KindExperience:
		return defaultExperienceImage
	case models.KindService:
		return defaultServiceImage
	default:
		return defaultPropertyImage
	}
}

func firstString(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func firstFloat(candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func firstInt(candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func firstBool(candidates ...*bool) bool {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return false
}
