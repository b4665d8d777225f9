package model

// ChatTurn is one message of the conversation history supplied by the caller.
// Only user-authored turns participate in constraint memory.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchRequest represents a search query request.
type SearchRequest struct {
	Query   string         `json:"query" binding:"required"`
	History []ChatTurn     `json:"history,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchFilters are explicit structured filters (e.g. from UI controls) that
// override what the extractor parses out of the query text.
type SearchFilters struct {
	Districts []int    `json:"districts,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
	MinStar   *int     `json:"min_star,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
}

// SearchOptions represents search options.
type SearchOptions struct {
	TopK int `json:"top_k"`
}

// SearchResponse represents a ranked search result response.
type SearchResponse struct {
	SearchID    string      `json:"search_id"`
	Query       string      `json:"query"`
	Results     []HotelView `json:"results"`
	Total       int         `json:"total"`
	Constraints Constraints `json:"constraints"`
	Took        int64       `json:"took_ms"`
}

// EmbeddingBatchRequest represents a batch embedding update request.
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single embedding with its hotel id.
type EmbeddingItem struct {
	HotelID   int64     `json:"hotel_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update.
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
