package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hotelsearch/internal/model"
	"hotelsearch/internal/repository"
	"hotelsearch/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	defaultLimit  int
	maxLimit      int
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, defaultLimit, maxLimit int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		defaultLimit:  defaultLimit,
		maxLimit:      maxLimit,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set default options if not provided
	if req.Options == nil {
		req.Options = &model.SearchOptions{TopK: h.defaultLimit}
	} else {
		if req.Options.TopK <= 0 {
			req.Options.TopK = h.defaultLimit
		}
		if req.Options.TopK > h.maxLimit {
			req.Options.TopK = h.maxLimit
		}
	}

	response, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not loaded yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetHotel handles GET /api/v1/hotels/:id
func (h *SearchHandler) GetHotel(c *gin.Context) {
	hotelIDStr := c.Param("id")
	hotelID, err := strconv.ParseInt(hotelIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	hotel, err := h.searchService.GetHotel(hotelID)
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not loaded yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hotel: " + err.Error()})
		return
	}

	if hotel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// Reindex handles POST /api/v1/reindex. It rebuilds the snapshot from the
// catalog source and swaps it in atomically.
func (h *SearchHandler) Reindex(c *gin.Context) {
	count, err := h.searchService.Reindex(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reindex failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "hotels": count})
}
