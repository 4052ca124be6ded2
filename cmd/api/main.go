package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver

	scout "github.com/driftlabs/scout"
	"github.com/driftlabs/scout/api"
	"github.com/driftlabs/scout/db"
	"github.com/driftlabs/scout/providers"
	"github.com/driftlabs/scout/storage"
	"github.com/driftlabs/scout/tracing"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Load .env when present; real environments set variables directly
	_ = godotenv.Load()

	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("scout service initializing", "version", "1.0.0")

	// Initialize tracing
	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		ServiceName: "drift-scout",
		Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4317"),
		Enabled:     getEnv("TRACING_ENABLED", "") == "true",
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
	}

	// Default values
	defaultPort := getEnv("PORT", "8080")
	defaultStoragePath := getEnv("STORAGE_BASE_PATH", "")

	// Command-line flags (override environment variables)
	port := flag.String("port", defaultPort, "Server port")
	storagePath := flag.String("storage-path", defaultStoragePath, "Snapshot storage path (empty disables archiving)")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	flag.Parse()

	// PostgreSQL database configuration (optional; empty host runs
	// without persistence)
	var dbConfig db.Config
	dbHost := getEnv("DB_HOST", "")
	if dbHost != "" {
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "drift")
		dbPassword := getEnv("DB_PASSWORD", "drift_dev_pass")
		dbName := getEnv("DB_NAME", "drift")

		dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort, dbUser, dbPassword, dbName)
		logger.Info("using PostgreSQL database", "host", dbHost, "port", dbPort, "database", dbName)
	} else {
		logger.Warn("DB_HOST not set, running without persistence")
	}

	// S3 snapshot archive (optional; bucket set means S3 wins over the
	// filesystem path)
	s3Config := storage.S3Config{
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		Region:          getEnv("S3_REGION", ""),
		Bucket:          getEnv("S3_BUCKET", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		UsePathStyle:    getEnv("S3_USE_PATH_STYLE", "") == "true",
	}
	if s3Config.Bucket != "" {
		logger.Info("using S3 snapshot storage", "bucket", s3Config.Bucket, "region", s3Config.Region)
	}

	// Create server configuration
	config := api.Config{
		Addr:     ":" + *port,
		DBConfig: dbConfig,
		ParserConfig: scout.Config{
			HTTPTimeout:  15 * time.Second,
			PlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
		},
		StoragePath: *storagePath,
		S3:          s3Config,
		Yelp: providers.YelpConfig{
			APIKey: getEnv("YELP_API_KEY", ""),
		},
		Google: providers.GoogleConfig{
			APIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
		},
		Eventbrite: providers.EventbriteConfig{
			Token: getEnv("EVENTBRITE_API_KEY", ""),
		},
		Weather: providers.WeatherConfig{
			APIKey: getEnv("OPENWEATHER_API_KEY", ""),
		},
		CORSEnabled: !*disableCORS,
	}

	// Create server
	server, err := api.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("scout service starting",
			"port", *port,
			"storage_path", *storagePath,
			"persistence", dbHost != "",
			"yelp_configured", config.Yelp.APIKey != "",
			"google_configured", config.Google.APIKey != "",
			"eventbrite_configured", config.Eventbrite.Token != "",
			"openweather_configured", config.Weather.APIKey != "",
		)

		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
