package models

import "time"

// Kind discriminates the three listing types served by the marketplace.
type Kind string

const (
	KindProperty   Kind = "property"
	KindExperience Kind = "experience"
	KindService    Kind = "service"
	// KindAll is only valid inside FilterCriteria.
	KindAll Kind = "all"
)

// Kinds lists the concrete listing kinds in canonical order.
var Kinds = []Kind{KindProperty, KindExperience, KindService}

// Valid reports whether k names a concrete listing kind.
func (k Kind) Valid() bool {
	return k == KindProperty || k == KindExperience || k == KindService
}

// RawListing is the loosely-typed shape of an upstream record. The backend
// is inconsistent about field names across kinds (title/name/expTitle,
// price/pricePerNight/pricePerHour and so on), so every synonym gets its
// own optional field and the normalizer coalesces them in a fixed order.
// JSON decoding is case-insensitive, which also covers the PascalCase
// variants (Title, ImageUrl) the backend emits.
type RawListing struct {
	ID              *int64   `json:"id"`
	Title           string   `json:"title"`
	Name            string   `json:"name"`
	ExpTitle        string   `json:"expTitle"`
	ServiceName     string   `json:"serviceName"`
	Location        string   `json:"location"`
	City            string   `json:"city"`
	Country         string   `json:"country"`
	Price           *float64 `json:"price"`
	PricePerNight   *float64 `json:"pricePerNight"`
	PricePerHour    *float64 `json:"pricePerHour"`
	Rating          *float64 `json:"rating"`
	ReviewCount     *int     `json:"reviewCount"`
	Reviews         *int     `json:"reviews"`
	Images          []string `json:"images"`
	ImageURL        string   `json:"imageUrl"`
	MaxGuests       *int     `json:"maxGuests"`
	MaxParticipants *int     `json:"maxParticipants"`
	Category        string   `json:"category"`
	PropertyType    string   `json:"propertyType"`
	Theme           string   `json:"theme"`
	Trade           string   `json:"trade"`
	Amenities       []string `json:"amenities"`
	Superhost       *bool    `json:"superhost"`
	IsSuperhost     *bool    `json:"isSuperhost"`
	InstantBook     *bool    `json:"instantBook"`
}

// NormalizedListing is the single canonical shape every kind is mapped
// into before filtering and aggregation. Instances are rebuilt on every
// upstream refresh; identity across refreshes is (Kind, ID) only.
type NormalizedListing struct {
	ID          int64    `json:"id"`
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Images      []string `json:"images"`
	CoverImage  string   `json:"cover_image"`
	// Capacity is maxGuests for properties and maxParticipants for
	// experiences. Zero means unknown; capacity filters fail closed on it.
	// Services carry no capacity and are exempt from capacity checks.
	Capacity     int      `json:"capacity,omitempty"`
	CategoryKey  string   `json:"category_key"`
	Amenities    []string `json:"amenities,omitempty"`
	IsWishlisted bool     `json:"is_wishlisted"`
	Superhost    bool     `json:"superhost"`
	InstantBook  bool     `json:"instant_book"`
}

// FilterCriteria holds the active search constraints. Nil/zero fields mean
// "no constraint"; see the filter package for clause semantics.
type FilterCriteria struct {
	Location    string
	PriceMin    *float64
	PriceMax    *float64
	Adults      int
	Children    int
	Infants     int
	Pets        int
	DateStart   *time.Time
	DateEnd     *time.Time
	Kind        Kind
	Amenities   []string
	Superhost   bool
	InstantBook bool
}

// TotalGuests returns the capacity-relevant guest count. Infants and pets
// do not count toward listing capacity.
func (c FilterCriteria) TotalGuests() int {
	return c.Adults + c.Children
}

// CategoryDef names one category bucket for a kind.
type CategoryDef struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// CategoryBucket groups filtered listings under one category. The bucket
// with key "other" is the catch-all; every filtered listing of a kind lands
// in exactly one bucket.
type CategoryBucket struct {
	Key   string              `json:"key"`
	Title string              `json:"title"`
	Items []NormalizedListing `json:"items"`
}

// WishlistItem is the wire and storage shape of one favorited listing.
type WishlistItem struct {
	ItemType Kind  `json:"itemType"`
	ItemID   int64 `json:"itemId"`
}

// Booking is a confirmed reservation used for date-availability checks.
// The range is half-open: [StartDate, EndDate).
type Booking struct {
	ID        int64     `db:"id" json:"id"`
	Kind      Kind      `db:"kind" json:"kind"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Status    string    `db:"status" json:"status"`
}

// BookingStatusConfirmed is the only status that blocks availability.
const BookingStatusConfirmed = "confirmed"
