package service

import (
	"regexp"
	"strconv"
	"strings"

	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
	"hotelsearch/internal/utils"
)

const priceUnits = `triệu|trieu|tr|million|mil|m|nghìn|nghin|ngàn|ngan|thousand|k`

var (
	districtNumQueryRe = regexp.MustCompile(`\b(?:quan|district|q)\s*(\d{1,2})\b`)
	districtPrefixRe   = regexp.MustCompile(`^\s*(\d{1,2})\s*,`)

	starRe = regexp.MustCompile(`\b(\d)\s*(?:sao|star|stars)\b`)

	ratingSlashRe = regexp.MustCompile(`\b(\d(?:[.,]\d)?)\s*/\s*5\b`)
	ratingWordRe  = regexp.MustCompile(`\b(?:rating|danh gia|diem|score)\D{0,12}?(\d(?:[.,]\d)?)\b`)
	// A bare comparison; the word after the number decides whether it is a
	// rating, a star floor, or part of a price.
	comparisonRe = regexp.MustCompile(`\b(?:tren|hon|it nhat|toi thieu|over|above|at least)\s+(\d+(?:[.,]\d+)*)\s*(\p{L}*)`)

	priceRangeRe = regexp.MustCompile(`\b(\d+(?:[.,]\d+)*)\s*(` + priceUnits + `)?\s*(?:-|den|toi|to)\s*(\d+(?:[.,]\d+)*)\s*(` + priceUnits + `)?\b`)
	priceUpperRe = regexp.MustCompile(`\b(?:duoi|toi da|khong qua|under|below|less than|max)\s*(\d+(?:[.,]\d+)*)\s*(` + priceUnits + `)?\b`)
	priceLowerRe = regexp.MustCompile(`\b(?:tren|hon|tu|over|above|more than|at least|min)\s*(\d+(?:[.,]\d+)*)\s*(` + priceUnits + `)?\b`)
)

// namedDistricts are the non-numbered HCMC districts recognized by name.
var namedDistricts = []string{
	"binh thanh", "tan binh", "tan phu", "phu nhuan",
	"go vap", "binh tan", "thu duc", "nha be", "hoc mon", "cu chi",
}

// amenityVocab maps canonical amenity tags to the normalized phrases that
// signal them, in the query and in hotel text alike.
var amenityVocab = []struct {
	Tag     string
	Phrases []string
}{
	{"pool", []string{"ho boi", "be boi", "pool", "swimming"}},
	{"wifi", []string{"wifi", "wi fi"}},
	{"breakfast", []string{"an sang", "bua sang", "buffet", "breakfast"}},
	{"parking", []string{"do xe", "dau xe", "bai xe", "cho de xe", "parking"}},
	{"gym", []string{"gym", "phong tap", "fitness"}},
	{"spa", []string{"spa", "massage"}},
	{"near-center", []string{"trung tam", "city center", "city centre", "central"}},
	{"near-airport", []string{"san bay", "airport"}},
	{"sea-view", []string{"view bien", "gan bien", "sea view", "beach"}},
	{"family", []string{"gia dinh", "family"}},
}

var negationMarkers = map[string]struct{}{
	"khong": {}, "ko": {}, "chua": {}, "no": {}, "not": {}, "without": {},
}

var sortPhrases = []struct {
	Phrase string
	Order  model.SortOrder
}{
	{"re nhat", model.SortPriceAsc},
	{"gia thap nhat", model.SortPriceAsc},
	{"thap nhat", model.SortPriceAsc},
	{"cheapest", model.SortPriceAsc},
	{"dat nhat", model.SortPriceDesc},
	{"mac nhat", model.SortPriceDesc},
	{"gia cao nhat", model.SortPriceDesc},
	{"most expensive", model.SortPriceDesc},
	{"danh gia cao nhat", model.SortRatingDesc},
	{"danh gia tot nhat", model.SortRatingDesc},
	{"rating cao nhat", model.SortRatingDesc},
	{"best rated", model.SortRatingDesc},
	{"highest rated", model.SortRatingDesc},
	{"tot nhat", model.SortRatingDesc},
}

var cheapPhrases = []string{"gia re", "re", "binh dan", "tiet kiem", "cheap", "budget", "affordable"}
var midPhrases = []string{"tam trung", "gia vua", "vua tui tien", "mid range"}
var upscalePhrases = []string{"cao cap", "sang trong", "luxury", "upscale", "high end"}

// Extractor parses structured constraints out of free-form queries.
type Extractor struct{}

// NewExtractor creates a constraint extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses one query turn into constraints. Rules are independent; a
// query can trigger several of them at once. Thresholds anchor the
// qualitative price words to the current catalog's quantiles.
func (e *Extractor) Extract(query string, thr pricing.Thresholds) model.Constraints {
	var c model.Constraints
	folded := utils.Fold(query)
	normalized := utils.Normalize(query)
	tokens := strings.Fields(normalized)

	e.extractDistricts(folded, normalized, &c)
	e.extractStars(normalized, &c)
	e.extractRating(folded, normalized, &c)
	e.extractPrice(folded, normalized, thr, &c)
	e.extractAmenities(tokens, &c)

	// Only an explicitly requested price ordering demands a known price; the
	// default ascending sort implied by "giá rẻ" does not.
	if order, ok := explicitSort(normalized); ok {
		c.SortBy = order
		if order == model.SortPriceAsc || order == model.SortPriceDesc {
			c.PriceRequired = true
		}
	}
	return c
}

func (e *Extractor) extractDistricts(folded, normalized string, c *model.Constraints) {
	seen := map[int]struct{}{}
	addNum := func(raw string) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 24 {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		c.DistrictNums = append(c.DistrictNums, n)
	}

	// Shorthand like "1, gần chợ Bến Thành" names the district up front.
	if m := districtPrefixRe.FindStringSubmatch(folded); m != nil {
		addNum(m[1])
	}
	for _, m := range districtNumQueryRe.FindAllStringSubmatch(normalized, -1) {
		addNum(m[1])
	}
	for _, name := range namedDistricts {
		if containsPhrase(normalized, name) {
			c.DistrictNames = append(c.DistrictNames, name)
		}
	}
}

// extractStars keeps the highest mentioned star count as a floor, so
// "khách sạn 4 5 sao" means at least 4-star and "5 sao" means exactly the top
// tier.
func (e *Extractor) extractStars(normalized string, c *model.Constraints) {
	for _, m := range starRe.FindAllStringSubmatch(normalized, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 5 {
			continue
		}
		if c.MinStar == nil || n > *c.MinStar {
			v := n
			c.MinStar = &v
		}
	}
}

func (e *Extractor) extractRating(folded, normalized string, c *model.Constraints) {
	setRating := func(raw string) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || v <= 0 || v > 5 {
			return
		}
		if c.MinRating == nil || v > *c.MinRating {
			c.MinRating = &v
		}
	}

	// Matched on the folded text so decimal separators survive.
	if m := ratingSlashRe.FindStringSubmatch(folded); m != nil {
		setRating(m[1])
	}
	if m := ratingWordRe.FindStringSubmatch(folded); m != nil {
		setRating(m[1])
	}
	for _, m := range comparisonRe.FindAllStringSubmatch(folded, -1) {
		next := m[2]
		if next == "sao" || next == "star" || next == "stars" || isPriceUnit(next) {
			continue
		}
		setRating(m[1])
	}
}

// extractPrice applies the most specific rule that fires: a two-sided range
// beats a single-sided bound, which beats a qualitative intent word. Intent
// words translate to bounds at the catalog quantiles, so "giá rẻ" means a
// different budget on a luxury-heavy dataset than on a budget one.
func (e *Extractor) extractPrice(folded, normalized string, thr pricing.Thresholds, c *model.Constraints) {
	if m := priceRangeRe.FindStringSubmatch(folded); m != nil {
		loUnit, hiUnit := m[2], m[4]
		// A trailing unit covers both sides ("1 - 2 triệu").
		if loUnit == "" {
			loUnit = hiUnit
		}
		lo, okLo := pricing.Amount(m[1], loUnit)
		hi, okHi := pricing.Amount(m[3], hiUnit)
		if okLo && okHi && plausiblePrice(lo, loUnit) && plausiblePrice(hi, hiUnit) {
			if lo > hi {
				lo, hi = hi, lo
			}
			c.MinPrice, c.MaxPrice = &lo, &hi
			c.PriceExplicit = true
			return
		}
	}

	if m := priceUpperRe.FindStringSubmatch(folded); m != nil {
		if v, ok := pricing.Amount(m[1], m[2]); ok && plausiblePrice(v, m[2]) {
			c.MaxPrice = &v
			c.PriceExplicit = true
			return
		}
	}
	if m := priceLowerRe.FindStringSubmatch(folded); m != nil {
		if v, ok := pricing.Amount(m[1], m[2]); ok && plausiblePrice(v, m[2]) {
			c.MinPrice = &v
			c.PriceExplicit = true
			return
		}
	}

	for _, p := range upscalePhrases {
		if containsPhrase(normalized, p) {
			c.PriceIntent = model.PriceIntentUpscale
			lo := thr.Q75
			c.MinPrice = &lo
			return
		}
	}
	for _, p := range midPhrases {
		if containsPhrase(normalized, p) {
			c.PriceIntent = model.PriceIntentMidRange
			lo, hi := thr.Q25, thr.Q75
			c.MinPrice, c.MaxPrice = &lo, &hi
			return
		}
	}
	for _, p := range cheapPhrases {
		if containsPhrase(normalized, p) {
			c.PriceIntent = model.PriceIntentCheap
			hi := thr.Q25
			c.MaxPrice = &hi
			if c.SortBy == "" {
				c.SortBy = model.SortPriceAsc
			}
			return
		}
	}
}

// extractAmenities scans for amenity phrases and checks a short window of
// preceding tokens for a negation marker, so "không cần hồ bơi" excludes the
// pool tag instead of requiring it.
func (e *Extractor) extractAmenities(tokens []string, c *model.Constraints) {
	for _, entry := range amenityVocab {
		for _, phrase := range entry.Phrases {
			words := strings.Fields(phrase)
			pos := findSubsequence(tokens, words)
			if pos < 0 {
				continue
			}
			if negatedBefore(tokens, pos) {
				c.ExcludeAmenity(entry.Tag)
			} else {
				c.RequireAmenity(entry.Tag)
			}
			break
		}
	}
}

func explicitSort(normalized string) (model.SortOrder, bool) {
	for _, sp := range sortPhrases {
		if containsPhrase(normalized, sp.Phrase) {
			return sp.Order, true
		}
	}
	return "", false
}

// Merge folds an override turn onto a base: scalar fields are replaced when
// the override sets them, set fields are unioned, and the monotonic price
// flags only ever turn on. Price bounds override per side, so "trên 1 triệu"
// followed by "dưới 2 triệu" folds into a window; a qualitative intent in the
// override states a whole new budget and resets both bounds.
func Merge(base, override model.Constraints) model.Constraints {
	merged := base

	merged.DistrictNums = unionInts(base.DistrictNums, override.DistrictNums)
	merged.DistrictNames = unionStrings(base.DistrictNames, override.DistrictNames)

	if override.PriceIntent != model.PriceIntentNone {
		merged.PriceIntent = override.PriceIntent
		merged.MinPrice, merged.MaxPrice = override.MinPrice, override.MaxPrice
	} else {
		if override.MinPrice != nil {
			merged.MinPrice = override.MinPrice
		}
		if override.MaxPrice != nil {
			merged.MaxPrice = override.MaxPrice
		}
	}
	if override.MinRating != nil {
		merged.MinRating = override.MinRating
	}
	if override.MinStar != nil {
		merged.MinStar = override.MinStar
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}
	merged.PriceExplicit = base.PriceExplicit || override.PriceExplicit
	merged.PriceRequired = base.PriceRequired || override.PriceRequired

	merged.AmenitiesAny = copySet(base.AmenitiesAny)
	merged.AmenitiesNot = copySet(base.AmenitiesNot)
	for tag := range override.AmenitiesAny {
		merged.RequireAmenity(tag)
	}
	for tag := range override.AmenitiesNot {
		merged.ExcludeAmenity(tag)
	}
	return merged
}

// FoldHistory replays the most recent user turns in order and merges the
// current query on top, giving the newest statement the last word.
func (e *Extractor) FoldHistory(history []model.ChatTurn, query string, maxTurns int, thr pricing.Thresholds) model.Constraints {
	var userTurns []string
	for _, t := range history {
		if t.Role == "user" && strings.TrimSpace(t.Content) != "" {
			userTurns = append(userTurns, t.Content)
		}
	}
	if maxTurns > 0 && len(userTurns) > maxTurns {
		userTurns = userTurns[len(userTurns)-maxTurns:]
	}

	var acc model.Constraints
	for _, turn := range userTurns {
		acc = Merge(acc, e.Extract(turn, thr))
	}
	return Merge(acc, e.Extract(query, thr))
}

// plausiblePrice guards against reading "trên 4" (a rating) as four dong: a
// bare number only counts as a price when it is already in VND scale.
func plausiblePrice(v float64, unit string) bool {
	return unit != "" || v >= 1000
}

func isPriceUnit(s string) bool {
	switch s {
	case "trieu", "tr", "million", "mil", "m", "nghin", "ngan", "thousand", "k", "dong", "vnd":
		return true
	}
	return false
}

func containsPhrase(normalized, phrase string) bool {
	return strings.Contains(" "+normalized+" ", " "+phrase+" ")
}

func findSubsequence(tokens, words []string) int {
	if len(words) == 0 {
		return -1
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func negatedBefore(tokens []string, pos int) bool {
	for i := pos - 1; i >= 0 && i >= pos-3; i-- {
		if _, ok := negationMarkers[tokens[i]]; ok {
			return true
		}
	}
	return false
}

func unionInts(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	seen := make(map[int]struct{}, len(a))
	out := append([]int(nil), a...)
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	out := append([]string(nil), a...)
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func copySet(s map[string]struct{}) map[string]struct{} {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
