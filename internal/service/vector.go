package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hotelsearch/internal/repository"
)

// VectorMatch is one hit from a similarity search, identified by hotel name.
// Distance is non-negative; lower means more similar.
type VectorMatch struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// VectorRetriever is the external semantic search capability. Implementations
// own the embeddings; the search core only consumes (name, distance) pairs.
type VectorRetriever interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]VectorMatch, error)
}

// HTTPVectorRetriever calls a remote similarity-search service
type HTTPVectorRetriever struct {
	url        string
	httpClient *http.Client
}

// NewHTTPVectorRetriever creates a retriever backed by a remote HTTP service
func NewHTTPVectorRetriever(url string, timeoutSec int) *HTTPVectorRetriever {
	return &HTTPVectorRetriever{
		url: url,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

type vectorSearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type vectorSearchResponse struct {
	Results []VectorMatch `json:"results"`
}

// SimilaritySearch posts the query to the remote service
func (r *HTTPVectorRetriever) SimilaritySearch(ctx context.Context, query string, k int) ([]VectorMatch, error) {
	reqBody, err := json.Marshal(vectorSearchRequest{Query: query, K: k})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", r.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector search failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result vectorSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Results, nil
}

// PgVectorRetriever runs similarity search against the hotels table using
// pgvector, embedding the query text through the embeddings client first.
type PgVectorRetriever struct {
	repo       *repository.PostgresRepository
	embeddings *EmbeddingClient
}

// NewPgVectorRetriever creates a pgvector-backed retriever
func NewPgVectorRetriever(repo *repository.PostgresRepository, embeddings *EmbeddingClient) *PgVectorRetriever {
	return &PgVectorRetriever{repo: repo, embeddings: embeddings}
}

// SimilaritySearch embeds the query and scans the hotel embeddings
func (r *PgVectorRetriever) SimilaritySearch(ctx context.Context, query string, k int) ([]VectorMatch, error) {
	vectors, err := r.embeddings.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector")
	}

	rows, err := r.repo.VectorSearch(ctx, vectors[0], k)
	if err != nil {
		return nil, err
	}

	matches := make([]VectorMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, VectorMatch{Name: row.Name, Distance: row.Distance})
	}
	return matches, nil
}
