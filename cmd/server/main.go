package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelsearch/internal/config"
	"hotelsearch/internal/handler"
	"hotelsearch/internal/repository"
	"hotelsearch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("hotel search engine starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	gin.SetMode(cfg.Server.GinMode)

	// Catalog source: CSV export or PostgreSQL
	var (
		loader service.CatalogLoader
		pgRepo *repository.PostgresRepository
	)
	switch cfg.Catalog.Source {
	case "postgres":
		pgRepo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pgRepo.Close()
		loader = pgRepo
		logger.Info("catalog source: postgresql", zap.String("database", cfg.PostgreSQL.Database))
	default:
		loader = repository.NewCSVRepository(cfg.Catalog.CSVPath)
		logger.Info("catalog source: csv", zap.String("path", cfg.Catalog.CSVPath))
	}

	embeddings := service.NewEmbeddingClient(&cfg.Embedding, logger)

	// Vector retrieval is optional; searches degrade to lexical-only without it
	var retriever service.VectorRetriever
	switch cfg.Vector.Provider {
	case "http":
		retriever = service.NewHTTPVectorRetriever(cfg.Vector.URL, cfg.Vector.Timeout)
		logger.Info("vector retriever: http", zap.String("url", cfg.Vector.URL))
	case "pgvector":
		if pgRepo == nil {
			logger.Fatal("pgvector retriever requires CATALOG_SOURCE=postgres")
		}
		if !embeddings.IsEnabled() {
			logger.Fatal("pgvector retriever requires an embedding API key")
		}
		retriever = service.NewPgVectorRetriever(pgRepo, embeddings)
		logger.Info("vector retriever: pgvector")
	default:
		logger.Info("vector retriever disabled")
	}

	store := repository.NewStore()
	searchService := service.NewSearchService(store, loader, retriever, cfg, logger)
	if pgRepo != nil {
		searchService.SetSearchLog(pgRepo)
	}

	// The first snapshot is mandatory; without it no query can be answered
	buildCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	count, err := searchService.Reindex(buildCtx)
	cancel()
	if err != nil {
		logger.Fatal("failed to build initial catalog snapshot", zap.Error(err))
	}
	logger.Info("catalog snapshot ready", zap.Int("hotels", count))

	searchHandler := handler.NewSearchHandler(searchService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	embeddingHandler := handler.NewEmbeddingHandler(pgRepo, cfg.Embedding.Dimensions)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "hotel-search-engine",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/hotels/:id", searchHandler.GetHotel)
		apiV1.POST("/reindex", searchHandler.Reindex)
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
