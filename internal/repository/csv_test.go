package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `hotelname,address,district,price,totalScore,star,amenities,description1,reviews,lat,lng,url_google,imageUrl
Khách Sạn Mai Anh,"12 Lê Lợi, Quận 1, TP.HCM",Quận 1,"490000 - 1150000",4.5,3,"['Hồ bơi','Wifi miễn phí']",Gần chợ Bến Thành,"['Phòng sạch','Nhân viên thân thiện']",10.77,106.70,https://example.com/mai-anh,https://img.example.com/1.jpg
Saigon River Hotel,"5 Tôn Đức Thắng, Quận 1",Quận 1,2 triệu,4.8,5,"['Hồ bơi','Gym']",Khách sạn 5 sao ven sông,,10.78,106.71,,
Budget Stay,"77 Âu Cơ, Quận Tân Bình",Quận Tân Bình,,not-a-number,9,,,,bad,bad,,
,"no name row",,,,,,,,,,,
`

func TestReadHotelsCSV(t *testing.T) {
	hotels, err := ReadHotelsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, hotels, 3)

	first := hotels[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Khách Sạn Mai Anh", first.Name)
	assert.Equal(t, "490000 - 1150000", first.PriceRaw)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.5, *first.Rating, 1e-9)
	require.NotNil(t, first.Star)
	assert.Equal(t, 3, *first.Star)
	assert.Equal(t, "Hồ bơi, Wifi miễn phí", first.Amenities)
	assert.Equal(t, "Phòng sạch, Nhân viên thân thiện", first.Reviews)

	// Malformed numeric fields degrade to nil instead of failing the load.
	third := hotels[2]
	assert.Equal(t, "Budget Stay", third.Name)
	assert.Nil(t, third.Rating)
	assert.Nil(t, third.Star)
	assert.Nil(t, third.Latitude)
}

func TestReadHotelsCSVMissingHeader(t *testing.T) {
	_, err := ReadHotelsCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestBuildBundle(t *testing.T) {
	hotels, err := ReadHotelsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	b, err := BuildBundle(hotels, BundleOptions{MinDocFreq: 1})
	require.NoError(t, err)

	h := b.ByID[1]
	require.NotNil(t, h)
	require.NotNil(t, h.DistrictNum)
	assert.Equal(t, 1, *h.DistrictNum)
	require.NotNil(t, h.PriceMin)
	assert.InDelta(t, 490000, *h.PriceMin, 1e-6)
	require.NotNil(t, h.PriceMid)
	assert.InDelta(t, 820000, *h.PriceMid, 1e-6)

	// Simple name variant resolves to the same hotel.
	assert.NotEmpty(t, b.ByNameNorm["mai anh"])
	assert.Equal(t, int64(1), b.ByNameNorm["mai anh"][0].ID)

	// Star tokens are indexed lexically.
	hits := b.Lexical.Query("khach san 5 sao", 5)
	require.NotEmpty(t, hits)

	// Fewer than the sample floor means fixed fallback thresholds.
	assert.InDelta(t, 500000, b.Thresholds.Q25, 1e-6)
}

func TestBuildBundleEmpty(t *testing.T) {
	_, err := BuildBundle(nil, BundleOptions{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestStoreSwap(t *testing.T) {
	s := NewStore()
	_, err := s.Current()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	hotels, err := ReadHotelsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	b, err := BuildBundle(hotels, BundleOptions{MinDocFreq: 1})
	require.NoError(t, err)

	s.Swap(b)
	got, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, b, got)
}
