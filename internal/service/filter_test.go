package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelsearch/internal/model"
	"hotelsearch/internal/repository"
)

const filterFixtureCSV = `hotelname,address,district,price,totalScore,star,amenities,description1,reviews,lat,lng,url_google,imageUrl
Hotel Alpha,"1 Lê Lợi, Quận 1",Quận 1,500000,4.6,3,"['Hồ bơi','Wifi']",Gần trung tâm,,,,,
Hotel Beta,"2 Hai Bà Trưng, Quận 1",Quận 1,1500000,4.2,4,"['Gym']",,,,,,
Hotel Gamma,"3 Phạm Văn Đồng, Thủ Đức",Thủ Đức,700000,3.9,2,"['Hồ bơi']",,,,,,
Hotel Delta,"4 Trường Sơn, Quận Tân Bình",Quận Tân Bình,,4.9,5,"['Spa','Hồ bơi']",Gần sân bay,,,,,
Hotel Epsilon,"5 Nguyễn Huệ, Quận 3",Quận 3,900000,,,,,,,,,
`

func filterFixture(t *testing.T) *repository.Bundle {
	t.Helper()
	hotels, err := repository.ReadHotelsCSV(strings.NewReader(filterFixtureCSV))
	require.NoError(t, err)
	b, err := repository.BuildBundle(hotels, repository.BundleOptions{MinDocFreq: 1})
	require.NoError(t, err)
	return b
}

func allowedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func TestFilterDistrictNumbers(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	set := f.AllowedSet(b, model.Constraints{DistrictNums: []int{1}})
	assert.ElementsMatch(t, []int64{1, 2}, allowedIDs(set))
}

func TestFilterDistrictNamesAndPriority(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	set := f.AllowedSet(b, model.Constraints{DistrictNames: []string{"thu duc"}})
	assert.ElementsMatch(t, []int64{3}, allowedIDs(set))

	// Numbers win when both kinds are present.
	set = f.AllowedSet(b, model.Constraints{
		DistrictNums:  []int{3},
		DistrictNames: []string{"thu duc"},
	})
	assert.ElementsMatch(t, []int64{5}, allowedIDs(set))
}

func TestFilterPricePartialOverlap(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	max := 1_000_000.0
	set := f.AllowedSet(b, model.Constraints{MaxPrice: &max})
	// Beta's 1.5M is over budget; Delta has no price but gets the benefit of
	// the doubt while the price was not stated explicitly.
	assert.ElementsMatch(t, []int64{1, 3, 4, 5}, allowedIDs(set))

	set = f.AllowedSet(b, model.Constraints{MaxPrice: &max, PriceExplicit: true})
	assert.ElementsMatch(t, []int64{1, 3, 5}, allowedIDs(set))
}

func TestFilterPriceRequiredExcludesUnpriced(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	set := f.AllowedSet(b, model.Constraints{PriceRequired: true})
	assert.NotContains(t, allowedIDs(set), int64(4))
}

func TestFilterRatingAndStarFloors(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	rating := 4.5
	set := f.AllowedSet(b, model.Constraints{MinRating: &rating})
	// Epsilon has no rating, so a floor excludes it.
	assert.ElementsMatch(t, []int64{1, 4}, allowedIDs(set))

	star := 4
	set = f.AllowedSet(b, model.Constraints{MinStar: &star})
	assert.ElementsMatch(t, []int64{2, 4}, allowedIDs(set))
}

func TestFilterAmenities(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	var c model.Constraints
	c.RequireAmenity("pool")
	set := f.AllowedSet(b, c)
	assert.ElementsMatch(t, []int64{1, 3, 4}, allowedIDs(set))

	// Required amenities are an OR: either pool or gym qualifies.
	c = model.Constraints{}
	c.RequireAmenity("pool")
	c.RequireAmenity("gym")
	set = f.AllowedSet(b, c)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, allowedIDs(set))

	// Exclusion is an AND-NOT on top.
	c.ExcludeAmenity("spa")
	set = f.AllowedSet(b, c)
	assert.ElementsMatch(t, []int64{1, 2, 3}, allowedIDs(set))
}

func TestFilterConjunction(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	max := 1_000_000.0
	c := model.Constraints{DistrictNums: []int{1}, MaxPrice: &max, PriceExplicit: true}
	c.RequireAmenity("pool")

	set := f.AllowedSet(b, c)
	assert.ElementsMatch(t, []int64{1}, allowedIDs(set))
}

func TestFilterEmptyConstraintsAllowsAll(t *testing.T) {
	b := filterFixture(t)
	f := NewFilter()

	set := f.AllowedSet(b, model.Constraints{})
	assert.Len(t, set, len(b.Hotels))
}
