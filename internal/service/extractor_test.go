package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
)

var testThresholds = pricing.DefaultThresholds()

func TestExtractDistricts(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn quận 1 hoặc quận 3", testThresholds)
	assert.Equal(t, []int{1, 3}, c.DistrictNums)

	c = e.Extract("homestay ở Bình Thạnh", testThresholds)
	assert.Empty(t, c.DistrictNums)
	assert.Equal(t, []string{"binh thanh"}, c.DistrictNames)

	c = e.Extract("hotel in district 7", testThresholds)
	assert.Equal(t, []int{7}, c.DistrictNums)

	// Leading "N," shorthand names the district up front.
	c = e.Extract("3, gần chợ Bến Thành", testThresholds)
	assert.Equal(t, []int{3}, c.DistrictNums)
}

func TestExtractStarsKeepsMax(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn 4 sao hoặc 5 sao", testThresholds)
	require.NotNil(t, c.MinStar)
	assert.Equal(t, 5, *c.MinStar)

	c = e.Extract("3 star hotel", testThresholds)
	require.NotNil(t, c.MinStar)
	assert.Equal(t, 3, *c.MinStar)
}

func TestExtractRating(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn đánh giá 4.5", testThresholds)
	require.NotNil(t, c.MinRating)
	assert.InDelta(t, 4.5, *c.MinRating, 1e-9)

	c = e.Extract("rating trên 4,5/5", testThresholds)
	require.NotNil(t, c.MinRating)
	assert.InDelta(t, 4.5, *c.MinRating, 1e-9)

	// "trên 4 sao" is a star floor, not a rating.
	c = e.Extract("trên 4 sao", testThresholds)
	assert.Nil(t, c.MinRating)
	require.NotNil(t, c.MinStar)
	assert.Equal(t, 4, *c.MinStar)
}

func TestExtractPriceRange(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn từ 1 đến 2 triệu", testThresholds)
	require.NotNil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, 1_000_000, *c.MinPrice, 1e-6)
	assert.InDelta(t, 2_000_000, *c.MaxPrice, 1e-6)
	assert.True(t, c.PriceExplicit)

	// Trailing unit covers both sides, reversed bounds swap.
	c = e.Extract("giá 2 - 1 triệu", testThresholds)
	require.NotNil(t, c.MinPrice)
	assert.InDelta(t, 1_000_000, *c.MinPrice, 1e-6)
	assert.InDelta(t, 2_000_000, *c.MaxPrice, 1e-6)
}

func TestExtractPriceSingleSided(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("dưới 800k gần chợ Bến Thành", testThresholds)
	assert.Nil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, 800_000, *c.MaxPrice, 1e-6)
	assert.True(t, c.PriceExplicit)

	c = e.Extract("trên 1.500.000 đồng", testThresholds)
	require.NotNil(t, c.MinPrice)
	assert.InDelta(t, 1_500_000, *c.MinPrice, 1e-6)
}

func TestExtractPriceIntent(t *testing.T) {
	e := NewExtractor()

	// "giá rẻ" anchors to the q25 threshold and defaults to cheapest-first,
	// without committing to an explicit price.
	c := e.Extract("khách sạn giá rẻ quận 1", testThresholds)
	assert.Equal(t, model.PriceIntentCheap, c.PriceIntent)
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, testThresholds.Q25, *c.MaxPrice, 1e-6)
	assert.Equal(t, model.SortPriceAsc, c.SortBy)
	assert.False(t, c.PriceExplicit)
	assert.False(t, c.PriceRequired)

	c = e.Extract("resort sang trọng", testThresholds)
	assert.Equal(t, model.PriceIntentUpscale, c.PriceIntent)
	require.NotNil(t, c.MinPrice)
	assert.InDelta(t, testThresholds.Q75, *c.MinPrice, 1e-6)

	c = e.Extract("tầm trung thôi", testThresholds)
	assert.Equal(t, model.PriceIntentMidRange, c.PriceIntent)
	require.NotNil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)

	// A concrete bound beats an intent word in the same turn.
	c = e.Extract("giá rẻ dưới 500 nghìn", testThresholds)
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, 500_000, *c.MaxPrice, 1e-6)
	assert.Equal(t, model.PriceIntentNone, c.PriceIntent)
	assert.True(t, c.PriceExplicit)
}

func TestExtractAmenitiesWithNegation(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn có hồ bơi và ăn sáng, không cần spa", testThresholds)
	assert.Contains(t, c.AmenitiesAny, "pool")
	assert.Contains(t, c.AmenitiesAny, "breakfast")
	assert.Contains(t, c.AmenitiesNot, "spa")
	assert.NotContains(t, c.AmenitiesAny, "spa")
}

func TestExtractSort(t *testing.T) {
	e := NewExtractor()

	c := e.Extract("khách sạn rẻ nhất quận 1", testThresholds)
	assert.Equal(t, model.SortPriceAsc, c.SortBy)
	assert.True(t, c.PriceRequired)

	c = e.Extract("khách sạn đánh giá tốt nhất", testThresholds)
	assert.Equal(t, model.SortRatingDesc, c.SortBy)
	assert.False(t, c.PriceRequired)
}

func TestMergeEmptyOverrideIsIdentity(t *testing.T) {
	e := NewExtractor()
	base := e.Extract("khách sạn 4 sao quận 1 có hồ bơi dưới 2 triệu", testThresholds)

	merged := Merge(base, model.Constraints{})

	assert.Equal(t, base.DistrictNums, merged.DistrictNums)
	assert.Equal(t, base.MinStar, merged.MinStar)
	assert.Equal(t, base.MaxPrice, merged.MaxPrice)
	assert.Equal(t, base.AmenitiesAny, merged.AmenitiesAny)
	assert.Equal(t, base.PriceExplicit, merged.PriceExplicit)
}

func TestMergeUnionsAmenities(t *testing.T) {
	var base, override model.Constraints
	base.RequireAmenity("wifi")
	override.RequireAmenity("pool")

	merged := Merge(base, override)
	assert.Contains(t, merged.AmenitiesAny, "wifi")
	assert.Contains(t, merged.AmenitiesAny, "pool")
}

func TestMergeOverrideWins(t *testing.T) {
	e := NewExtractor()
	base := e.Extract("khách sạn quận 1 dưới 1 triệu có hồ bơi", testThresholds)
	override := e.Extract("thôi, từ 2 đến 3 triệu ở quận 3, không cần hồ bơi", testThresholds)

	merged := Merge(base, override)

	assert.ElementsMatch(t, []int{1, 3}, merged.DistrictNums)
	require.NotNil(t, merged.MinPrice)
	assert.InDelta(t, 2_000_000, *merged.MinPrice, 1e-6)
	assert.InDelta(t, 3_000_000, *merged.MaxPrice, 1e-6)
	assert.Contains(t, merged.AmenitiesNot, "pool")
	assert.NotContains(t, merged.AmenitiesAny, "pool")
	assert.True(t, merged.PriceExplicit)
}

func TestMergeSingleSidedBoundKeepsOther(t *testing.T) {
	e := NewExtractor()
	base := e.Extract("trên 1 triệu", testThresholds)
	override := e.Extract("dưới 2 triệu", testThresholds)

	// Bounds override per side; together the turns state a window.
	merged := Merge(base, override)
	require.NotNil(t, merged.MinPrice)
	require.NotNil(t, merged.MaxPrice)
	assert.InDelta(t, 1_000_000, *merged.MinPrice, 1e-6)
	assert.InDelta(t, 2_000_000, *merged.MaxPrice, 1e-6)
}

func TestFoldHistoryBuildsPriceWindow(t *testing.T) {
	e := NewExtractor()
	history := []model.ChatTurn{
		{Role: "user", Content: "khách sạn trên 1 triệu"},
	}

	c := e.FoldHistory(history, "dưới 2 triệu nhé", 6, testThresholds)
	require.NotNil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, 1_000_000, *c.MinPrice, 1e-6)
	assert.InDelta(t, 2_000_000, *c.MaxPrice, 1e-6)
}

func TestMergeIntentReplacesBounds(t *testing.T) {
	e := NewExtractor()
	base := e.Extract("dưới 1 triệu", testThresholds)
	override := e.Extract("thật ra cứ sang trọng đi", testThresholds)

	merged := Merge(base, override)
	assert.Nil(t, merged.MaxPrice)
	require.NotNil(t, merged.MinPrice)
	assert.InDelta(t, testThresholds.Q75, *merged.MinPrice, 1e-6)
	assert.Equal(t, model.PriceIntentUpscale, merged.PriceIntent)
	// Explicit stays latched even after the budget moved.
	assert.True(t, merged.PriceExplicit)
}

func TestFoldHistory(t *testing.T) {
	e := NewExtractor()
	history := []model.ChatTurn{
		{Role: "user", Content: "tìm khách sạn quận 1"},
		{Role: "assistant", Content: "Đây là vài gợi ý ở quận 1"},
		{Role: "user", Content: "có hồ bơi nhé"},
	}

	c := e.FoldHistory(history, "dưới 1 triệu", 6, testThresholds)

	assert.Equal(t, []int{1}, c.DistrictNums)
	assert.Contains(t, c.AmenitiesAny, "pool")
	require.NotNil(t, c.MaxPrice)
	assert.InDelta(t, 1_000_000, *c.MaxPrice, 1e-6)
}

func TestFoldHistoryLimitsTurns(t *testing.T) {
	e := NewExtractor()
	history := []model.ChatTurn{
		{Role: "user", Content: "khách sạn quận 5"},
		{Role: "user", Content: "quận 1"},
		{Role: "user", Content: "quận 2"},
	}

	c := e.FoldHistory(history, "có gym", 2, testThresholds)

	assert.ElementsMatch(t, []int{1, 2}, c.DistrictNums)
	assert.NotContains(t, c.DistrictNums, 5)
}
