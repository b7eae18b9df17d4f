package location

import (
	"sort"
	"strings"
)

// Sentinel filter values that match every listing.
const (
	Flexible = "flexible"
	Anywhere = "anywhere"
)

// aliases maps the canonical location keys offered by the filter UI to the
// free-text variants that appear in backend location strings. Loaded once;
// never mutated at runtime. Matching is case-insensitive substring search,
// which is the only robust bridge between fixed city codes and free-text
// "City, Region" strings without a geocoding service.
var aliases = map[string][]string{
	"new_york":      {"New York", "NY", "New York City", "Manhattan", "Brooklyn"},
	"los_angeles":   {"Los Angeles", "LA", "Hollywood", "Santa Monica", "Venice Beach"},
	"miami":         {"Miami", "Miami Beach", "South Beach", "FL"},
	"san_francisco": {"San Francisco", "SF", "Bay Area", "Oakland"},
	"chicago":       {"Chicago", "IL"},
	"boston":        {"Boston", "Cambridge", "MA"},
	"seattle":       {"Seattle", "WA"},
	"austin":        {"Austin", "TX"},
	"denver":        {"Denver", "Boulder", "CO"},
	"malibu":        {"Malibu", "California"},
	"london":        {"London", "United Kingdom", "UK"},
	"paris":         {"Paris", "France"},
	"tokyo":         {"Tokyo", "Japan"},
	"barcelona":     {"Barcelona", "Spain"},
	"bali":          {"Bali", "Ubud", "Indonesia"},
}

// Resolve returns the match terms for a filter value. A canonical key
// yields its alias list; anything else is treated as a literal term. An
// empty slice means the filter is a no-op and everything matches.
func Resolve(filterValue string) []string {
	v := strings.ToLower(strings.TrimSpace(filterValue))
	if v == "" || v == Flexible || v == Anywhere {
		return nil
	}
	if terms, ok := aliases[v]; ok {
		return terms
	}
	return []string{strings.TrimSpace(filterValue)}
}

// Matches reports whether a listing location satisfies the filter value.
// The location passes when it contains any resolved term, ignoring case.
func Matches(listingLocation, filterValue string) bool {
	terms := Resolve(filterValue)
	if len(terms) == 0 {
		return true
	}
	loc := strings.ToLower(listingLocation)
	for _, term := range terms {
		if strings.Contains(loc, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Keys returns the canonical location keys, for filter option listings.
func Keys() []string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
