package model

// Hotel is one catalog row with its derived fields, parsed once at load time.
// A loaded snapshot is read-only; every raw field may independently be absent.
type Hotel struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"hotelname" db:"name"`
	Address     string   `json:"address" db:"address"`
	District    string   `json:"district" db:"district"`
	DistrictNum *int     `json:"district_num,omitempty" db:"-"`
	PriceRaw    string   `json:"-" db:"price_raw"`
	PriceMin    *float64 `json:"price_min,omitempty" db:"-"`
	PriceMax    *float64 `json:"price_max,omitempty" db:"-"`
	PriceMid    *float64 `json:"price_mid,omitempty" db:"-"`
	Rating      *float64 `json:"rating,omitempty" db:"rating"`
	Star        *int     `json:"star,omitempty" db:"star"`
	Amenities   string   `json:"amenities" db:"amenities"`
	Description string   `json:"description" db:"description"`
	Reviews     string   `json:"reviews" db:"reviews"`
	Latitude    *float64 `json:"lat,omitempty" db:"latitude"`
	Longitude   *float64 `json:"lon,omitempty" db:"longitude"`
	URL         string   `json:"url" db:"url"`
	ImageURL    string   `json:"image_url" db:"image_url"`

	// SearchText is the normalized concatenation of the text fields, the sole
	// key space for amenity and district-name matching.
	SearchText string `json:"-" db:"-"`
	// NameNorm and NameSimple are the normalized and simplified hotel name,
	// used to resolve vector-store identifiers and direct name mentions.
	NameNorm   string `json:"-" db:"-"`
	NameSimple string `json:"-" db:"-"`
}

// HotelView is the output contract consumed by the answer-generation/UI
// layer: one ranked result with a display price and a match-reason tag.
type HotelView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"hotelname"`
	Address     string   `json:"address"`
	District    string   `json:"district"`
	DistrictNum *int     `json:"district_num,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Star        *int     `json:"star,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	PriceText   string   `json:"price_text"`
	Amenities   string   `json:"amenities,omitempty"`
	Description string   `json:"description,omitempty"`
	Reviews     string   `json:"reviews,omitempty"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Score       float64  `json:"score"`
	MatchReason string   `json:"match_reason"`
}
