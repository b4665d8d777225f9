package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"hotelsearch/internal/lexical"
	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
	"hotelsearch/internal/utils"
)

var (
	// ErrEmptyCatalog is returned when the catalog source yields no hotels
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrNoSnapshot is returned when no snapshot has been published yet
	ErrNoSnapshot = errors.New("no catalog snapshot available")
)

var districtNumRe = regexp.MustCompile(`\bquan\s+(\d{1,2})\b`)

// BundleOptions control snapshot derivation
type BundleOptions struct {
	MinDocFreq int
	MaxVocab   int
}

// Bundle is an immutable snapshot of the catalog with all derived search
// structures. Bundles are built once and swapped in atomically; readers never
// see a partially built snapshot.
type Bundle struct {
	Hotels     []model.Hotel
	ByID       map[int64]*model.Hotel
	ByNameNorm map[string][]*model.Hotel
	Thresholds pricing.Thresholds
	Lexical    *lexical.Index
}

// BuildBundle derives a search snapshot from raw catalog rows
func BuildBundle(hotels []model.Hotel, opts BundleOptions) (*Bundle, error) {
	if len(hotels) == 0 {
		return nil, ErrEmptyCatalog
	}

	b := &Bundle{
		Hotels:     make([]model.Hotel, len(hotels)),
		ByID:       make(map[int64]*model.Hotel, len(hotels)),
		ByNameNorm: make(map[string][]*model.Hotel),
	}
	copy(b.Hotels, hotels)

	var prices []float64
	for i := range b.Hotels {
		h := &b.Hotels[i]
		lo, hi, mid := pricing.ParsePrice(h.PriceRaw)
		h.PriceMin, h.PriceMax, h.PriceMid = lo, hi, mid
		if mid != nil && *mid > 0 {
			prices = append(prices, *mid)
		}
	}

	thr := pricing.DefaultThresholds()
	if computed := pricing.ComputeThresholds(prices); computed != nil {
		thr = *computed
	}
	b.Thresholds = thr

	docs := make([]lexical.Doc, 0, len(b.Hotels))
	for i := range b.Hotels {
		h := &b.Hotels[i]
		h.NameNorm = utils.Normalize(h.Name)
		h.NameSimple = utils.SimplifyName(h.Name)
		h.DistrictNum = districtNumber(h.District, h.Address)
		h.SearchText = synthesizeDoc(h, thr)

		b.ByID[h.ID] = h
		b.ByNameNorm[h.NameNorm] = append(b.ByNameNorm[h.NameNorm], h)
		if h.NameSimple != "" && h.NameSimple != h.NameNorm {
			b.ByNameNorm[h.NameSimple] = append(b.ByNameNorm[h.NameSimple], h)
		}
		docs = append(docs, lexical.Doc{ID: h.ID, Text: h.SearchText})
	}

	b.Lexical = lexical.Build(docs, lexical.Options{
		MinDocFreq: opts.MinDocFreq,
		MaxVocab:   opts.MaxVocab,
	})
	return b, nil
}

// districtNumber extracts a numeric district from the district field, falling
// back to the address
func districtNumber(district, address string) *int {
	for _, s := range []string{district, address} {
		m := districtNumRe.FindStringSubmatch(utils.Normalize(s))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 24 {
			continue
		}
		return &n
	}
	return nil
}

// synthesizeDoc builds the normalized text blob indexed for a hotel. It
// mixes descriptive fields with structured tokens so queries like "4 sao"
// or "gia re" can match lexically.
func synthesizeDoc(h *model.Hotel, thr pricing.Thresholds) string {
	var sb strings.Builder
	for _, part := range []string{h.Name, h.Address, h.District, h.Amenities, h.Description, h.Reviews} {
		if part == "" {
			continue
		}
		sb.WriteString(part)
		sb.WriteString(" ")
	}
	if h.Star != nil {
		fmt.Fprintf(&sb, "%d sao khach san %d sao ", *h.Star, *h.Star)
	}
	if h.Rating != nil {
		fmt.Fprintf(&sb, "rating %.1f ", *h.Rating)
	}
	switch pricing.BucketFor(h.PriceMid, thr) {
	case pricing.BucketCheap:
		sb.WriteString("gia re binh dan cheap budget ")
	case pricing.BucketMid:
		sb.WriteString("tam trung mid range ")
	case pricing.BucketHigh:
		sb.WriteString("cao cap upscale ")
	case pricing.BucketLuxury:
		sb.WriteString("sang trong luxury ")
	}
	return utils.Normalize(sb.String())
}

// Store publishes catalog snapshots with atomic swap semantics
type Store struct {
	current atomic.Pointer[Bundle]
}

// NewStore creates an empty snapshot store
func NewStore() *Store {
	return &Store{}
}

// Swap publishes a new snapshot. The previous one stays valid for in-flight
// readers.
func (s *Store) Swap(b *Bundle) {
	s.current.Store(b)
}

// Current returns the active snapshot
func (s *Store) Current() (*Bundle, error) {
	b := s.current.Load()
	if b == nil {
		return nil, ErrNoSnapshot
	}
	return b, nil
}
