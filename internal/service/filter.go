package service

import (
	"hotelsearch/internal/model"
	"hotelsearch/internal/repository"
)

// Filter applies hard constraints to the catalog. Every rule is a
// conjunction; a hotel survives only if it passes them all.
type Filter struct{}

// NewFilter creates a constraint filter
func NewFilter() *Filter {
	return &Filter{}
}

// AllowedSet returns the IDs of hotels satisfying all constraints. With empty
// constraints every hotel is allowed.
func (f *Filter) AllowedSet(bundle *repository.Bundle, c model.Constraints) map[int64]struct{} {
	allowed := make(map[int64]struct{}, len(bundle.Hotels))
	for i := range bundle.Hotels {
		h := &bundle.Hotels[i]
		if f.Matches(h, c) {
			allowed[h.ID] = struct{}{}
		}
	}
	return allowed
}

// Matches checks a single hotel against the constraints
func (f *Filter) Matches(h *model.Hotel, c model.Constraints) bool {
	return f.matchDistrict(h, c) &&
		f.matchPrice(h, c) &&
		f.matchRating(h, c) &&
		f.matchStar(h, c) &&
		f.matchAmenities(h, c)
}

// matchDistrict prefers numeric districts when both kinds were mentioned,
// since "quận 1" is unambiguous while names need a substring match.
func (f *Filter) matchDistrict(h *model.Hotel, c model.Constraints) bool {
	if len(c.DistrictNums) > 0 {
		if h.DistrictNum == nil {
			return false
		}
		for _, n := range c.DistrictNums {
			if *h.DistrictNum == n {
				return true
			}
		}
		return false
	}
	if len(c.DistrictNames) > 0 {
		for _, name := range c.DistrictNames {
			if containsPhrase(h.SearchText, name) {
				return true
			}
		}
		return false
	}
	return true
}

// matchPrice passes on partial overlap between the hotel's price span and the
// requested window. Hotels without a parsed price only drop when the user
// actually committed to a price.
func (f *Filter) matchPrice(h *model.Hotel, c model.Constraints) bool {
	if !c.HasPriceBound() {
		if h.PriceMid == nil && (c.PriceExplicit || c.PriceRequired) {
			return false
		}
		return true
	}
	if h.PriceMin == nil || h.PriceMax == nil {
		if c.PriceExplicit || c.PriceRequired {
			return false
		}
		return true
	}
	if c.MaxPrice != nil && *h.PriceMin > *c.MaxPrice {
		return false
	}
	if c.MinPrice != nil && *h.PriceMax < *c.MinPrice {
		return false
	}
	return true
}

func (f *Filter) matchRating(h *model.Hotel, c model.Constraints) bool {
	if c.MinRating == nil {
		return true
	}
	return h.Rating != nil && *h.Rating >= *c.MinRating
}

func (f *Filter) matchStar(h *model.Hotel, c model.Constraints) bool {
	if c.MinStar == nil {
		return true
	}
	return h.Star != nil && *h.Star >= *c.MinStar
}

// matchAmenities takes the required set as an OR (any requested amenity
// qualifies) and the excluded set as an AND-NOT over the hotel's normalized
// text.
func (f *Filter) matchAmenities(h *model.Hotel, c model.Constraints) bool {
	if len(c.AmenitiesAny) > 0 {
		found := false
		for tag := range c.AmenitiesAny {
			if hotelHasAmenity(h, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for tag := range c.AmenitiesNot {
		if hotelHasAmenity(h, tag) {
			return false
		}
	}
	return true
}

func hotelHasAmenity(h *model.Hotel, tag string) bool {
	for _, entry := range amenityVocab {
		if entry.Tag != tag {
			continue
		}
		for _, phrase := range entry.Phrases {
			if containsPhrase(h.SearchText, phrase) {
				return true
			}
		}
		return false
	}
	return false
}
