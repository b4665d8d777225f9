package model

// SortOrder is an explicit result ordering requested by the user.
type SortOrder string

const (
	SortRelevance  SortOrder = "relevance"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc"
)

// PriceIntent is a qualitative price preference extracted from the query when
// no concrete amount was given.
type PriceIntent string

const (
	PriceIntentNone     PriceIntent = ""
	PriceIntentCheap    PriceIntent = "cheap"
	PriceIntentMidRange PriceIntent = "mid"
	PriceIntentUpscale  PriceIntent = "upscale"
)

// Constraints is the structured filter extracted from one query turn, or the
// fold of several turns of conversation memory. Zero value means
// "unconstrained". Instances are per-call and never shared.
type Constraints struct {
	DistrictNums  []int               `json:"district_nums,omitempty"`
	DistrictNames []string            `json:"district_names,omitempty"`
	MinPrice      *float64            `json:"min_price,omitempty"`
	MaxPrice      *float64            `json:"max_price,omitempty"`
	MinRating     *float64            `json:"min_rating,omitempty"`
	MinStar       *int                `json:"min_star,omitempty"`
	AmenitiesAny  map[string]struct{} `json:"-"`
	AmenitiesNot  map[string]struct{} `json:"-"`
	SortBy        SortOrder           `json:"sort_by,omitempty"`
	PriceIntent   PriceIntent         `json:"price_intent,omitempty"`

	// PriceExplicit records that a concrete amount was stated by the user.
	// PriceRequired additionally captures orderings that need a known price.
	// Both are monotonic across merges: once true, they stay true.
	PriceExplicit bool `json:"price_explicit,omitempty"`
	PriceRequired bool `json:"price_required,omitempty"`
}

// RequireAmenity adds a tag to the required set unless it is excluded.
func (c *Constraints) RequireAmenity(tag string) {
	if c.AmenitiesNot != nil {
		if _, excluded := c.AmenitiesNot[tag]; excluded {
			return
		}
	}
	if c.AmenitiesAny == nil {
		c.AmenitiesAny = make(map[string]struct{})
	}
	c.AmenitiesAny[tag] = struct{}{}
}

// ExcludeAmenity adds a tag to the excluded set and drops it from the
// required set; exclusion wins on conflict.
func (c *Constraints) ExcludeAmenity(tag string) {
	if c.AmenitiesNot == nil {
		c.AmenitiesNot = make(map[string]struct{})
	}
	c.AmenitiesNot[tag] = struct{}{}
	delete(c.AmenitiesAny, tag)
}

// HasPriceBound reports whether any concrete price bound is set.
func (c *Constraints) HasPriceBound() bool {
	return c.MinPrice != nil || c.MaxPrice != nil
}

// IsEmpty reports whether no field constrains anything.
func (c *Constraints) IsEmpty() bool {
	return len(c.DistrictNums) == 0 && len(c.DistrictNames) == 0 &&
		c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinRating == nil && c.MinStar == nil &&
		len(c.AmenitiesAny) == 0 && len(c.AmenitiesNot) == 0 &&
		c.SortBy == "" && c.PriceIntent == PriceIntentNone &&
		!c.PriceExplicit && !c.PriceRequired
}
