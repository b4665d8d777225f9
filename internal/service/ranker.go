package service

import (
	"math"
	"sort"

	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
)

// Match reason constants
const (
	ReasonNameMatch     = "name_match"
	ReasonHybridMatch   = "hybrid_match"
	ReasonSemanticMatch = "semantic_match"
	ReasonLexicalMatch  = "lexical_match"
	ReasonFilterMatch   = "filter_match"
)

// Candidate is one hotel entering score fusion with its retrieval signals.
type Candidate struct {
	Hotel  *model.Hotel
	VecSim float64
	LexSim float64
	HasVec bool
	HasLex bool
}

// Ranked is a fused, scored result.
type Ranked struct {
	Hotel  *model.Hotel
	Score  float64
	Reason string
}

// Ranker fuses vector, lexical and quality signals into one score
type Ranker struct {
	weightVector  float64
	weightLexical float64
	weightQuality float64
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightVector, weightLexical, weightQuality float64) *Ranker {
	return &Ranker{
		weightVector:  weightVector,
		weightLexical: weightLexical,
		weightQuality: weightQuality,
	}
}

// Rank scores the candidates and returns them best first. The caller is
// expected to keep a few multiples of the requested count and apply any
// explicit user sort afterwards.
func (r *Ranker) Rank(candidates []Candidate, c model.Constraints, thr pricing.Thresholds) []Ranked {
	results := make([]Ranked, 0, len(candidates))
	for _, cand := range candidates {
		quality := r.qualityScore(cand.Hotel)
		priceFit := r.priceFitScore(cand.Hotel, c, thr)

		score := r.weightVector*cand.VecSim +
			r.weightLexical*cand.LexSim +
			r.weightQuality*(0.7*quality+0.3*priceFit)

		results = append(results, Ranked{
			Hotel:  cand.Hotel,
			Score:  score,
			Reason: matchReason(cand),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// qualityScore blends review rating and star class, both on a 0-5 scale.
// A missing component simply contributes nothing.
func (r *Ranker) qualityScore(h *model.Hotel) float64 {
	var rating, star float64
	if h.Rating != nil {
		rating = *h.Rating / 5
	}
	if h.Star != nil {
		star = float64(*h.Star) / 5
	}
	return 0.7*rating + 0.3*star
}

// priceFitScore measures how well a hotel's price suits the request. An
// explicit window gets a triangular proximity score peaking at its midpoint;
// otherwise the hotel's bucket maps to a static preference table.
func (r *Ranker) priceFitScore(h *model.Hotel, c model.Constraints, thr pricing.Thresholds) float64 {
	if c.PriceExplicit && c.HasPriceBound() {
		return r.windowFit(h.PriceMid, c)
	}

	bucket := pricing.BucketFor(h.PriceMid, thr)
	switch bucket {
	case pricing.BucketCheap:
		return 1.0
	case pricing.BucketMid:
		return 0.6
	case pricing.BucketHigh:
		return 0.4
	case pricing.BucketLuxury:
		return 0.25
	default:
		// Unknown price scores zero unless the user only hinted at
		// affordability, which keeps unpriced hotels faintly in play.
		if !c.PriceExplicit && c.PriceIntent == model.PriceIntentCheap {
			return 0.15
		}
		return 0
	}
}

func (r *Ranker) windowFit(price *float64, c model.Constraints) float64 {
	if price == nil {
		return 0
	}
	p := *price

	if c.MinPrice != nil && c.MaxPrice != nil {
		lo, hi := *c.MinPrice, *c.MaxPrice
		if p < lo || p > hi {
			return 0
		}
		width := hi - lo
		if width == 0 {
			return 1.0
		}
		mid := (lo + hi) / 2
		fit := 1.0 - math.Abs(p-mid)/(width/2)
		if fit < 0 {
			fit = 0
		}
		return fit
	}

	if c.MinPrice != nil {
		if p < *c.MinPrice {
			return 0
		}
		return 1.0
	}

	if p > *c.MaxPrice {
		return 0
	}
	fit := p / *c.MaxPrice
	if fit > 1.0 {
		fit = 1.0
	}
	return fit
}

func matchReason(c Candidate) string {
	switch {
	case c.HasVec && c.HasLex:
		return ReasonHybridMatch
	case c.HasVec:
		return ReasonSemanticMatch
	case c.HasLex:
		return ReasonLexicalMatch
	default:
		return ReasonFilterMatch
	}
}

// FallbackRank orders the whole allowed set by catalog quality when retrieval
// found nothing usable: rating descending, star descending, then cheapest
// first with unpriced hotels last.
func FallbackRank(hotels []*model.Hotel) []Ranked {
	sorted := append([]*model.Hotel(nil), hotels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := floatOrZero(sorted[i].Rating), floatOrZero(sorted[j].Rating)
		if ri != rj {
			return ri > rj
		}
		si, sj := intOrZero(sorted[i].Star), intOrZero(sorted[j].Star)
		if si != sj {
			return si > sj
		}
		pi, pj := sorted[i].PriceMin, sorted[j].PriceMin
		if (pi == nil) != (pj == nil) {
			return pj == nil
		}
		if pi != nil && pj != nil && *pi != *pj {
			return *pi < *pj
		}
		return false
	})

	out := make([]Ranked, 0, len(sorted))
	for _, h := range sorted {
		out = append(out, Ranked{Hotel: h, Reason: ReasonFilterMatch})
	}
	return out
}

// ApplySort reorders an already-fused pool by an explicit user preference.
// The sort is stable so fusion order breaks ties.
func ApplySort(results []Ranked, order model.SortOrder) {
	switch order {
	case model.SortPriceAsc:
		sort.SliceStable(results, func(i, j int) bool {
			return lessByPrice(results[i].Hotel, results[j].Hotel, true)
		})
	case model.SortPriceDesc:
		sort.SliceStable(results, func(i, j int) bool {
			return lessByPrice(results[i].Hotel, results[j].Hotel, false)
		})
	case model.SortRatingDesc:
		sort.SliceStable(results, func(i, j int) bool {
			return floatOrZero(results[i].Hotel.Rating) > floatOrZero(results[j].Hotel.Rating)
		})
	}
}

// lessByPrice keeps unpriced hotels at the end in either direction
func lessByPrice(a, b *model.Hotel, asc bool) bool {
	pa, pb := a.PriceMid, b.PriceMid
	if (pa == nil) != (pb == nil) {
		return pb == nil
	}
	if pa == nil || pb == nil {
		return false
	}
	if asc {
		return *pa < *pb
	}
	return *pa > *pb
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
