package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func rankFixtureHotels() []*model.Hotel {
	return []*model.Hotel{
		{ID: 1, Name: "Alpha", PriceMid: fptr(400_000), PriceMin: fptr(400_000), Rating: fptr(4.0), Star: iptr(3)},
		{ID: 2, Name: "Beta", PriceMid: fptr(1_200_000), PriceMin: fptr(1_200_000), Rating: fptr(4.8), Star: iptr(5)},
		{ID: 3, Name: "Gamma", Rating: fptr(4.8), Star: iptr(4)},
		{ID: 4, Name: "Delta", PriceMid: fptr(800_000), PriceMin: fptr(800_000)},
	}
}

func TestRankWeighsSignals(t *testing.T) {
	r := NewRanker(0.50, 0.35, 0.15)
	hotels := rankFixtureHotels()

	candidates := []Candidate{
		{Hotel: hotels[0], LexSim: 0.9, HasLex: true},
		{Hotel: hotels[1], VecSim: 0.9, HasVec: true},
		{Hotel: hotels[3], VecSim: 0.9, LexSim: 0.9, HasVec: true, HasLex: true},
	}

	results := r.Rank(candidates, model.Constraints{}, pricing.DefaultThresholds())
	require.Len(t, results, 3)

	// The hybrid candidate carries both retrieval signals and wins.
	assert.Equal(t, int64(4), results[0].Hotel.ID)
	assert.Equal(t, ReasonHybridMatch, results[0].Reason)
	assert.Equal(t, ReasonSemanticMatch, findReason(results, 2))
	assert.Equal(t, ReasonLexicalMatch, findReason(results, 1))
}

func findReason(results []Ranked, id int64) string {
	for _, r := range results {
		if r.Hotel.ID == id {
			return r.Reason
		}
	}
	return ""
}

func TestPriceFitTriangularWindow(t *testing.T) {
	r := NewRanker(0.50, 0.35, 0.15)
	thr := pricing.DefaultThresholds()

	c := model.Constraints{
		MinPrice:      fptr(500_000),
		MaxPrice:      fptr(1_500_000),
		PriceExplicit: true,
	}

	atMid := &model.Hotel{PriceMid: fptr(1_000_000)}
	atEdge := &model.Hotel{PriceMid: fptr(1_500_000)}
	outside := &model.Hotel{PriceMid: fptr(2_000_000)}
	unknown := &model.Hotel{}

	assert.InDelta(t, 1.0, r.priceFitScore(atMid, c, thr), 1e-9)
	assert.InDelta(t, 0.0, r.priceFitScore(atEdge, c, thr), 1e-9)
	assert.InDelta(t, 0.0, r.priceFitScore(outside, c, thr), 1e-9)
	assert.InDelta(t, 0.0, r.priceFitScore(unknown, c, thr), 1e-9)
}

func TestPriceFitBucketTable(t *testing.T) {
	r := NewRanker(0.50, 0.35, 0.15)
	thr := pricing.DefaultThresholds()

	cheap := &model.Hotel{PriceMid: fptr(300_000)}
	mid := &model.Hotel{PriceMid: fptr(900_000)}
	luxury := &model.Hotel{PriceMid: fptr(5_000_000)}
	unknown := &model.Hotel{}

	var c model.Constraints
	assert.InDelta(t, 1.0, r.priceFitScore(cheap, c, thr), 1e-9)
	assert.InDelta(t, 0.6, r.priceFitScore(mid, c, thr), 1e-9)
	assert.InDelta(t, 0.25, r.priceFitScore(luxury, c, thr), 1e-9)
	assert.InDelta(t, 0.0, r.priceFitScore(unknown, c, thr), 1e-9)

	// A purely qualitative "cheap" hint keeps unpriced hotels faintly alive.
	c.PriceIntent = model.PriceIntentCheap
	assert.InDelta(t, 0.15, r.priceFitScore(unknown, c, thr), 1e-9)
}

func TestFallbackRankOrdering(t *testing.T) {
	hotels := rankFixtureHotels()

	results := FallbackRank(hotels)
	require.Len(t, results, 4)

	// Rating desc first; equal ratings break on star desc; missing price last.
	assert.Equal(t, int64(2), results[0].Hotel.ID)
	assert.Equal(t, int64(3), results[1].Hotel.ID)
	assert.Equal(t, int64(1), results[2].Hotel.ID)
	assert.Equal(t, int64(4), results[3].Hotel.ID)
	for _, r := range results {
		assert.Equal(t, ReasonFilterMatch, r.Reason)
	}
}

func TestApplySortPrice(t *testing.T) {
	hotels := rankFixtureHotels()
	results := []Ranked{
		{Hotel: hotels[1]}, // 1.2M
		{Hotel: hotels[2]}, // no price
		{Hotel: hotels[0]}, // 400k
		{Hotel: hotels[3]}, // 800k
	}

	ApplySort(results, model.SortPriceAsc)
	assert.Equal(t, int64(1), results[0].Hotel.ID)
	assert.Equal(t, int64(4), results[1].Hotel.ID)
	assert.Equal(t, int64(2), results[2].Hotel.ID)
	// Unpriced hotels always sink to the end.
	assert.Equal(t, int64(3), results[3].Hotel.ID)

	ApplySort(results, model.SortPriceDesc)
	assert.Equal(t, int64(2), results[0].Hotel.ID)
	assert.Equal(t, int64(3), results[3].Hotel.ID)
}
