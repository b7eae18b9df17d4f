package category

import "market-search/internal/models"

// CatchAllKey is the bucket receiving listings whose category key matched
// no named definition. It guarantees the union of all buckets of a kind
// equals the filtered set of that kind.
const CatchAllKey = "other"

// Defaults holds the named category definitions per kind, in display order.
// The catch-all is implicit and always appended last.
var Defaults = map[models.Kind][]models.CategoryDef{
	models.KindProperty: {
		{Key: "beachfront", Title: "Beachfront"},
		{Key: "cabin", Title: "Cabins"},
		{Key: "countryside", Title: "Countryside"},
		{Key: "city", Title: "City Apartments"},
		{Key: "luxury", Title: "Luxury Stays"},
	},
	models.KindExperience: {
		{Key: "food_drink", Title: "Food & Drink"},
		{Key: "outdoor", Title: "Outdoor Adventures"},
		{Key: "art_culture", Title: "Art & Culture"},
		{Key: "wellness", Title: "Wellness"},
	},
	models.KindService: {
		{Key: "cleaning", Title: "Cleaning Services"},
		{Key: "photography", Title: "Photography"},
		{Key: "chef", Title: "Private Chefs"},
		{Key: "training", Title: "Personal Training"},
	},
}

// Aggregate partitions listings of one kind into buckets following the
// definition order, then a catch-all for everything unassigned. Empty
// buckets are returned as-is; callers decide whether to render them.
func Aggregate(listings []models.NormalizedListing, kind models.Kind, defs []models.CategoryDef) []models.CategoryBucket {
	buckets := make([]models.CategoryBucket, 0, len(defs)+1)
	assigned := make(map[int64]struct{})

	for _, def := range defs {
		bucket := models.CategoryBucket{Key: def.Key, Title: def.Title, Items: []models.NormalizedListing{}}
		for _, l := range listings {
			if l.Kind != kind {
				continue
			}
			if l.CategoryKey == def.Key {
				bucket.Items = append(bucket.Items, l)
				assigned[l.ID] = struct{}{}
			}
		}
		buckets = append(buckets, bucket)
	}

	catchAll := models.CategoryBucket{Key: CatchAllKey, Title: "Other", Items: []models.NormalizedListing{}}
	for _, l := range listings {
		if l.Kind != kind {
			continue
		}
		if _, ok := assigned[l.ID]; !ok {
			catchAll.Items = append(catchAll.Items, l)
		}
	}
	buckets = append(buckets, catchAll)

	return buckets
}

// AggregateAll buckets a mixed collection per kind using the default
// definitions.
func AggregateAll(listings []models.NormalizedListing) map[models.Kind][]models.CategoryBucket {
	out := make(map[models.Kind][]models.CategoryBucket, len(models.Kinds))
	for _, kind := range models.Kinds {
		out[kind] = Aggregate(listings, kind, Defaults[kind])
	}
	return out
}
