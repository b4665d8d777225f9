// Package pricing parses the heterogeneous price strings found in the hotel
// catalog and classifies prices into coarse tiers derived from dataset
// quantiles.
package pricing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Bucket is a coarse semantic price tier.
type Bucket string

const (
	BucketUnknown Bucket = "unknown"
	BucketCheap   Bucket = "cheap"
	BucketMid     Bucket = "mid"
	BucketHigh    Bucket = "high"
	BucketLuxury  Bucket = "luxury"
)

// Thresholds holds the dataset-wide price quantiles used for bucketing and
// for resolving qualitative price intents ("cheap", "upscale").
type Thresholds struct {
	Q10 float64
	Q25 float64
	Q50 float64
	Q75 float64
	Q90 float64
}

// MinThresholdSamples is the minimum number of valid mid-prices required
// before quantiles are considered representative.
const MinThresholdSamples = 50

// DefaultThresholds are the fixed fallback boundaries used when the catalog
// has too few priced rows for data-derived quantiles. The values follow the
// price segments of the Ho Chi Minh City market the catalog covers
// (under 500k VND budget, under 1.5M mid-range, under 4M upscale).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Q10: 200_000,
		Q25: 500_000,
		Q50: 900_000,
		Q75: 1_500_000,
		Q90: 4_000_000,
	}
}

// ComputeThresholds computes price quantiles over the valid samples. It
// returns nil when fewer than MinThresholdSamples prices are available, so
// callers fall back to DefaultThresholds explicitly rather than trusting
// quantiles of a tiny sample.
func ComputeThresholds(prices []float64) *Thresholds {
	valid := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			valid = append(valid, p)
		}
	}
	if len(valid) < MinThresholdSamples {
		return nil
	}

	sort.Float64s(valid)
	return &Thresholds{
		Q10: stat.Quantile(0.10, stat.Empirical, valid, nil),
		Q25: stat.Quantile(0.25, stat.Empirical, valid, nil),
		Q50: stat.Quantile(0.50, stat.Empirical, valid, nil),
		Q75: stat.Quantile(0.75, stat.Empirical, valid, nil),
		Q90: stat.Quantile(0.90, stat.Empirical, valid, nil),
	}
}

// BucketFor classifies a price against the thresholds.
func BucketFor(price *float64, thr Thresholds) Bucket {
	if price == nil || *price <= 0 {
		return BucketUnknown
	}
	switch {
	case *price <= thr.Q25:
		return BucketCheap
	case *price <= thr.Q75:
		return BucketMid
	case *price <= thr.Q90:
		return BucketHigh
	default:
		return BucketLuxury
	}
}

var (
	// A number with optional grouping/decimal separators followed by an
	// optional magnitude unit (million / thousand, Vietnamese or English).
	amountRe = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*(triệu|trieu|tr|million|mil|m|nghìn|nghin|ngàn|ngan|thousand|k)?`)

	// Two amounts joined by a dash-style separator.
	rangeRe = regexp.MustCompile(`^(.*?\d)\s*(?:-|–|—|~|đến|den|tới|toi)\s*(\d.*)$`)

	upperBoundRe = regexp.MustCompile(`^\s*(?:dưới|duoi|under|below|<=?|max)\s`)
	lowerBoundRe = regexp.MustCompile(`^\s*(?:trên|tren|từ|tu|over|above|>=?|min)\s|\+\s*$`)
)

func unitMultiplier(unit string) float64 {
	switch unit {
	case "triệu", "trieu", "tr", "million", "mil", "m":
		return 1_000_000
	case "nghìn", "nghin", "ngàn", "ngan", "thousand", "k":
		return 1_000
	default:
		return 1
	}
}

// parseAmount converts one matched amount to VND. With a magnitude unit the
// separators are decimal ("1,5 triệu"); without one they are digit grouping
// ("1.500.000").
func parseAmount(num, unit string) (float64, bool) {
	if unit != "" {
		s := strings.ReplaceAll(num, ",", ".")
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v * unitMultiplier(unit), true
	}

	s := strings.NewReplacer(".", "", ",", "").Replace(num)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Amount converts a matched number and optional magnitude unit to VND. It is
// the same conversion ParsePrice applies to each side of a price cell.
func Amount(num, unit string) (float64, bool) {
	return parseAmount(num, unit)
}

func parseSide(side string) (float64, string, bool) {
	m := amountRe.FindStringSubmatch(side)
	if m == nil {
		return 0, "", false
	}
	v, ok := parseAmount(m[1], m[2])
	return v, m[2], ok
}

// ParsePrice parses a raw catalog price cell into numeric bounds. It accepts
// plain amounts with grouping separators, amounts with million/thousand
// suffixes, dash-delimited ranges in either order, and single-sided bounds
// ("dưới 2 triệu", "490000+"). Anything unparseable yields three nils; the
// function never fails.
func ParsePrice(raw string) (min, max, mid *float64) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "nan" || s == "none" || s == "null" || s == "0" {
		return nil, nil, nil
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, loUnit, loOK := parseSide(m[1])
		hi, hiUnit, hiOK := parseSide(m[2])
		// "1-2 triệu": the unit after the second amount applies to both.
		if loOK && hiOK && loUnit == "" && hiUnit != "" {
			lo *= unitMultiplier(hiUnit)
		}
		if loOK && hiOK {
			if lo > hi {
				lo, hi = hi, lo
			}
			avg := (lo + hi) / 2
			return &lo, &hi, &avg
		}
		if loOK {
			mid := lo
			return &lo, nil, &mid
		}
		if hiOK {
			mid := hi
			return nil, &hi, &mid
		}
		return nil, nil, nil
	}

	v, _, ok := parseSide(s)
	if !ok {
		return nil, nil, nil
	}

	switch {
	case upperBoundRe.MatchString(s):
		mid := v
		return nil, &v, &mid
	case lowerBoundRe.MatchString(s):
		mid := v
		return &v, nil, &mid
	default:
		lo, hi, mid := v, v, v
		return &lo, &hi, &mid
	}
}

// FormatVND renders a mid-price for display, in millions per night.
func FormatVND(price *float64) string {
	if price == nil || *price <= 0 {
		return "không rõ giá"
	}
	return fmt.Sprintf("khoảng %.1f triệu VND/đêm", *price/1_000_000)
}
