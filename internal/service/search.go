package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotelsearch/internal/config"
	"hotelsearch/internal/model"
	"hotelsearch/internal/pricing"
	"hotelsearch/internal/repository"
	"hotelsearch/internal/utils"
)

// CatalogLoader yields raw catalog rows for snapshot building
type CatalogLoader interface {
	LoadHotels(ctx context.Context) ([]model.Hotel, error)
}

// SearchLogger records answered queries for offline analysis
type SearchLogger interface {
	LogSearch(ctx context.Context, searchID, query string, resultCount int, hotelIDs []int64, responseTimeMs int64) error
}

// SearchService orchestrates hybrid retrieval: constraint extraction,
// filtering, lexical and vector candidates, score fusion and fallback.
type SearchService struct {
	store     *repository.Store
	loader    CatalogLoader
	extractor *Extractor
	filter    *Filter
	ranker    *Ranker
	retriever VectorRetriever
	searchLog SearchLogger
	logger    *zap.Logger

	searchCfg  config.SearchConfig
	lexicalCfg config.LexicalConfig
	vectorTopK int
}

// NewSearchService creates the search orchestrator. The retriever may be nil,
// in which case ranking runs on lexical and constraint signals only.
func NewSearchService(
	store *repository.Store,
	loader CatalogLoader,
	retriever VectorRetriever,
	cfg *config.Config,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		store:      store,
		loader:     loader,
		extractor:  NewExtractor(),
		filter:     NewFilter(),
		ranker:     NewRanker(cfg.Ranking.WeightVector, cfg.Ranking.WeightLexical, cfg.Ranking.WeightQuality),
		retriever:  retriever,
		logger:     logger,
		searchCfg:  cfg.Search,
		lexicalCfg: cfg.Lexical,
		vectorTopK: cfg.Vector.TopK,
	}
}

// SetSearchLog attaches an optional query log sink
func (s *SearchService) SetSearchLog(l SearchLogger) {
	s.searchLog = l
}

// Reindex reloads the catalog and atomically swaps in a fresh snapshot.
// In-flight queries keep reading the previous one.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	hotels, err := s.loader.LoadHotels(ctx)
	if err != nil {
		return 0, err
	}
	bundle, err := repository.BuildBundle(hotels, repository.BundleOptions{
		MinDocFreq: s.lexicalCfg.MinDocFreq,
		MaxVocab:   s.lexicalCfg.MaxVocab,
	})
	if err != nil {
		return 0, err
	}
	s.store.Swap(bundle)
	s.logger.Info("catalog snapshot swapped",
		zap.Int("hotels", len(bundle.Hotels)),
		zap.Int("indexed", bundle.Lexical.Size()))
	return len(bundle.Hotels), nil
}

// GetHotel returns one hotel from the current snapshot
func (s *SearchService) GetHotel(id int64) (*model.Hotel, error) {
	bundle, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return bundle.ByID[id], nil
}

// Search runs one query end to end
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	start := time.Now()

	bundle, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	topK := s.searchCfg.DefaultLimit
	if req.Options != nil && req.Options.TopK > 0 {
		topK = req.Options.TopK
	}
	if topK > s.searchCfg.MaxLimit {
		topK = s.searchCfg.MaxLimit
	}

	constraints := s.extractor.FoldHistory(req.History, req.Query, s.searchCfg.HistoryTurns, bundle.Thresholds)
	constraints = applyExplicitFilters(constraints, req.Filters)

	// A hotel named outright short-circuits everything else.
	if named := s.nameMatches(bundle, req.Query); len(named) > 0 {
		views := buildViews(named, topK)
		resp := s.respond(req.Query, views, constraints, start)
		s.logQuery(ctx, resp)
		return resp, nil
	}

	allowed := s.filter.AllowedSet(bundle, constraints)

	candidates := s.collectCandidates(ctx, bundle, req.Query, topK, allowed)

	var ranked []Ranked
	if len(candidates) == 0 && len(allowed) > 0 {
		pool := make([]*model.Hotel, 0, len(allowed))
		for id := range allowed {
			pool = append(pool, bundle.ByID[id])
		}
		ranked = FallbackRank(pool)
	} else {
		ranked = s.ranker.Rank(candidates, constraints, bundle.Thresholds)
		keep := s.searchCfg.CandidateMultiplier * topK
		if keep > 0 && len(ranked) > keep {
			ranked = ranked[:keep]
		}
		ApplySort(ranked, constraints.SortBy)
	}

	views := buildViews(ranked, topK)
	resp := s.respond(req.Query, views, constraints, start)
	s.logQuery(ctx, resp)

	s.logger.Info("search completed",
		zap.String("search_id", resp.SearchID),
		zap.String("query", req.Query),
		zap.Int("allowed", len(allowed)),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(views)),
		zap.Int64("took_ms", resp.Took))
	return resp, nil
}

// logQuery is best effort; a failing log sink never fails the query
func (s *SearchService) logQuery(ctx context.Context, resp *model.SearchResponse) {
	if s.searchLog == nil {
		return
	}
	ids := make([]int64, 0, len(resp.Results))
	for _, v := range resp.Results {
		ids = append(ids, v.ID)
	}
	if err := s.searchLog.LogSearch(ctx, resp.SearchID, resp.Query, resp.Total, ids, resp.Took); err != nil {
		s.logger.Warn("failed to log search", zap.Error(err))
	}
}

func (s *SearchService) respond(query string, views []model.HotelView, c model.Constraints, start time.Time) *model.SearchResponse {
	return &model.SearchResponse{
		SearchID:    uuid.NewString(),
		Query:       query,
		Results:     views,
		Total:       len(views),
		Constraints: c,
		Took:        time.Since(start).Milliseconds(),
	}
}

// collectCandidates gathers the lexical and vector hits that survive the
// constraint filter, merged per hotel.
func (s *SearchService) collectCandidates(
	ctx context.Context,
	bundle *repository.Bundle,
	query string,
	topK int,
	allowed map[int64]struct{},
) []Candidate {
	pool := s.searchCfg.CandidateMultiplier * topK
	if pool < topK {
		pool = topK
	}

	byID := make(map[int64]*Candidate)

	for _, hit := range bundle.Lexical.Query(query, pool) {
		if _, ok := allowed[hit.ID]; !ok {
			continue
		}
		byID[hit.ID] = &Candidate{
			Hotel:  bundle.ByID[hit.ID],
			LexSim: hit.Score,
			HasLex: true,
		}
	}

	for _, m := range s.vectorMatches(ctx, query) {
		h := resolveByName(bundle, m.Name)
		if h == nil {
			continue
		}
		if _, ok := allowed[h.ID]; !ok {
			continue
		}
		sim := 1.0 / (1.0 + m.Distance)
		if c, ok := byID[h.ID]; ok {
			c.VecSim = sim
			c.HasVec = true
		} else {
			byID[h.ID] = &Candidate{Hotel: h, VecSim: sim, HasVec: true}
		}
	}

	out := make([]Candidate, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	return out
}

// vectorMatches degrades a failing retriever to zero candidates; the query
// still answers from lexical and constraint signals.
func (s *SearchService) vectorMatches(ctx context.Context, query string) []VectorMatch {
	if s.retriever == nil {
		return nil
	}
	matches, err := s.retriever.SimilaritySearch(ctx, query, s.vectorTopK)
	if err != nil {
		s.logger.Warn("vector search failed, continuing without semantic candidates",
			zap.String("query", query),
			zap.Error(err))
		return nil
	}
	return matches
}

// resolveByName maps a vector-store identifier back to a catalog row.
// Unresolvable names are dropped silently.
func resolveByName(bundle *repository.Bundle, name string) *model.Hotel {
	for _, key := range []string{utils.Normalize(name), utils.SimplifyName(name)} {
		if key == "" {
			continue
		}
		if hs, ok := bundle.ByNameNorm[key]; ok && len(hs) > 0 {
			return hs[0]
		}
	}
	return nil
}

// nameMatches finds hotels named outright: either the hotel name appears
// verbatim in the query, or the whole simplified query is part of a hotel
// name. Very short strings are skipped on both sides to avoid matching on
// generic words.
func (s *SearchService) nameMatches(bundle *repository.Bundle, query string) []Ranked {
	qnorm := utils.Normalize(query)
	if qnorm == "" {
		return nil
	}
	qsimple := utils.SimplifyName(query)
	if len(qsimple) < 6 && !strings.Contains(qsimple, " ") {
		qsimple = ""
	}

	var out []Ranked
	for i := range bundle.Hotels {
		h := &bundle.Hotels[i]
		name := h.NameSimple
		if name == "" {
			name = h.NameNorm
		}
		if len(name) < 6 && !strings.Contains(name, " ") {
			continue
		}
		if containsPhrase(qnorm, name) || (qsimple != "" && containsPhrase(name, qsimple)) {
			out = append(out, Ranked{Hotel: h, Score: 1.0, Reason: ReasonNameMatch})
		}
	}
	return out
}

// applyExplicitFilters lets structured UI filters override whatever the
// extractor read out of the text.
func applyExplicitFilters(c model.Constraints, f *model.SearchFilters) model.Constraints {
	if f == nil {
		return c
	}
	if len(f.Districts) > 0 {
		c.DistrictNums = append([]int(nil), f.Districts...)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		c.MinPrice, c.MaxPrice = f.MinPrice, f.MaxPrice
		c.PriceIntent = model.PriceIntentNone
		c.PriceExplicit = true
	}
	if f.MinRating != nil {
		c.MinRating = f.MinRating
	}
	if f.MinStar != nil {
		c.MinStar = f.MinStar
	}
	if f.SortBy != "" {
		c.SortBy = model.SortOrder(f.SortBy)
		if c.SortBy == model.SortPriceAsc || c.SortBy == model.SortPriceDesc {
			c.PriceRequired = true
		}
	}
	return c
}

func buildViews(ranked []Ranked, topK int) []model.HotelView {
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	views := make([]model.HotelView, 0, len(ranked))
	for _, r := range ranked {
		h := r.Hotel
		views = append(views, model.HotelView{
			ID:          h.ID,
			Name:        h.Name,
			Address:     h.Address,
			District:    h.District,
			DistrictNum: h.DistrictNum,
			Rating:      h.Rating,
			Star:        h.Star,
			PriceMin:    h.PriceMin,
			PriceMax:    h.PriceMax,
			PriceText:   pricing.FormatVND(h.PriceMid),
			Amenities:   h.Amenities,
			Description: h.Description,
			Reviews:     h.Reviews,
			URL:         h.URL,
			ImageURL:    h.ImageURL,
			Score:       r.Score,
			MatchReason: r.Reason,
		})
	}
	return views
}
