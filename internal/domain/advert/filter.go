package advert

import (
	"regexp"
	"strings"
)

var cityPattern = regexp.MustCompile(`^[\w\s]+$`)

// Filter describes catalog predicates. All provided predicates must hold.
// City is an exact match; price bounds are inclusive. A nil bound means
// "not filtered", so an explicit zero bound still filters.
type Filter struct {
	City     string
	MinPrice *int64
	MaxPrice *int64
}

// Normalized returns a sanitized copy of the filter. Negative price bounds
// are dropped rather than clamped: no advert carries a negative price, so
// they carry no signal.
func (f Filter) Normalized() (Filter, error) {
	normalized := f
	normalized.City = strings.TrimSpace(normalized.City)
	if normalized.City != "" && !cityPattern.MatchString(normalized.City) {
		return Filter{}, ErrInvalidCity
	}
	if normalized.MinPrice != nil && *normalized.MinPrice < 0 {
		normalized.MinPrice = nil
	}
	if normalized.MaxPrice != nil && *normalized.MaxPrice < 0 {
		normalized.MaxPrice = nil
	}
	return normalized, nil
}

// Matches evaluates the filter against a single advert.
func (f Filter) Matches(a *Advert) bool {
	if f.City != "" && a.City != f.City {
		return false
	}
	if f.MinPrice != nil && a.PricePerNight < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && a.PricePerNight > *f.MaxPrice {
		return false
	}
	return true
}
