package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hotelsearch/internal/model"
	"hotelsearch/internal/utils"
)

// CSVRepository loads the hotel catalog from an exported crawl CSV.
type CSVRepository struct {
	path string
}

// NewCSVRepository creates a CSV-backed catalog loader
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// LoadHotels reads and parses the whole CSV file
func (r *CSVRepository) LoadHotels(ctx context.Context) ([]model.Hotel, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return ReadHotelsCSV(f)
}

// ReadHotelsCSV parses hotel rows from CSV data. The first row must be a
// header; rows are assigned 1-based IDs in file order. Malformed fields
// degrade to empty values rather than failing the whole load.
func ReadHotelsCSV(r io.Reader) ([]model.Hotel, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var hotels []model.Hotel
	id := int64(0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		id++

		h := model.Hotel{
			ID:          id,
			Name:        field(row, "hotelname"),
			Address:     field(row, "address"),
			District:    field(row, "district"),
			PriceRaw:    field(row, "price"),
			Amenities:   utils.CleanListString(field(row, "amenities")),
			Description: utils.CleanListString(field(row, "description1")),
			Reviews:     utils.CleanListString(field(row, "reviews")),
			URL:         field(row, "url_google"),
			ImageURL:    field(row, "imageUrl"),
		}
		if h.Name == "" {
			continue
		}
		h.Rating = parseFloatField(field(row, "totalScore"))
		h.Star = parseStarField(field(row, "star"))
		h.Latitude = parseFloatField(field(row, "lat"))
		h.Longitude = parseFloatField(field(row, "lng"))

		hotels = append(hotels, h)
	}
	return hotels, nil
}

func parseFloatField(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseStarField accepts "4", "4.0", "4 sao" and similar crawl variants
func parseStarField(s string) *int {
	if s == "" {
		return nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "sao")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	star := int(v)
	if star < 1 || star > 5 {
		return nil
	}
	return &star
}
