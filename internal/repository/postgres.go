package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hotelsearch/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// LoadHotels fetches the whole hotel catalog for snapshot building
func (r *PostgresRepository) LoadHotels(ctx context.Context) ([]model.Hotel, error) {
	query := `
		SELECT
			id, name, address, district, price_raw, rating, star,
			amenities, description, reviews, latitude, longitude, url, image_url
		FROM hotels
		ORDER BY id
	`
	var hotels []model.Hotel
	if err := r.db.SelectContext(ctx, &hotels, query); err != nil {
		return nil, fmt.Errorf("failed to fetch hotels: %w", err)
	}
	return hotels, nil
}

// GetHotelByID retrieves a single hotel by its ID
func (r *PostgresRepository) GetHotelByID(ctx context.Context, hotelID int64) (*model.Hotel, error) {
	var hotel model.Hotel
	query := `
		SELECT
			id, name, address, district, price_raw, rating, star,
			amenities, description, reviews, latitude, longitude, url, image_url
		FROM hotels
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &hotel, query, hotelID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &hotel, nil
}

// UpdateEmbedding updates the embedding vector for a hotel
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, hotelID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE hotels SET embedding = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vec, hotelID)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple hotels
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE hotels SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		_, err := stmt.ExecContext(ctx, vec, item.HotelID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("hotel_id %d: %v", item.HotelID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// VectorMatch is one row of a pgvector similarity search
type VectorMatch struct {
	Name     string  `db:"name"`
	Distance float64 `db:"distance"`
}

// VectorSearch returns the k nearest hotels by embedding distance
func (r *PostgresRepository) VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]VectorMatch, error) {
	vec := pgvector.NewVector(queryEmbedding)
	query := `
		SELECT name, embedding <=> $1 AS distance
		FROM hotels
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var matches []VectorMatch
	if err := r.db.SelectContext(ctx, &matches, query, vec, k); err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	return matches, nil
}

// LogSearch logs a search query
func (r *PostgresRepository) LogSearch(ctx context.Context, searchID, query string, resultCount int, hotelIDs []int64, responseTimeMs int64) error {
	ids := make([]string, 0, len(hotelIDs))
	for _, id := range hotelIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	logQuery := `
		INSERT INTO search_logs (search_id, query, result_count, returned_hotel_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, logQuery, searchID, query, resultCount, strings.Join(ids, ","), responseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
