// Package api exposes the HTTP surface: link parsing, travel-data
// aggregation, place autocomplete and saved-link management.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	scout "github.com/driftlabs/scout"
	"github.com/driftlabs/scout/aggregate"
	"github.com/driftlabs/scout/cache"
	"github.com/driftlabs/scout/db"
	"github.com/driftlabs/scout/metrics"
	"github.com/driftlabs/scout/models"
	"github.com/driftlabs/scout/providers"
	"github.com/driftlabs/scout/slug"
	"github.com/driftlabs/scout/storage"
)

// Server represents the API server
type Server struct {
	db          *db.DB // nil disables persistence
	parser      *scout.Parser
	aggregator  *aggregate.Aggregator
	places      *providers.GooglePlaces
	store       *cache.Memory
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
}

// Config contains server configuration
type Config struct {
	Addr         string
	DBConfig     db.Config // empty DSN runs without persistence
	ParserConfig scout.Config
	StoragePath  string           // filesystem snapshot archive; empty disables
	S3           storage.S3Config // S3 snapshot archive; takes precedence when Bucket is set
	Yelp         providers.YelpConfig
	Google       providers.GoogleConfig
	Eventbrite   providers.EventbriteConfig
	Weather      providers.WeatherConfig
	CORSEnabled  bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ParserConfig: scout.DefaultConfig(),
		CORSEnabled:  true,
	}
}

// NewServer creates a new API server
func NewServer(config Config) (*Server, error) {
	var database *db.DB
	if config.DBConfig.DSN != "" {
		var err error
		database, err = db.New(config.DBConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	var archive scout.SnapshotStore
	switch {
	case config.S3.Bucket != "":
		s3Storage, err := storage.NewS3Storage(context.Background(), config.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		archive = s3Storage
	case config.StoragePath != "":
		storageInstance, err := storage.New(storage.Config{BasePath: config.StoragePath})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		archive = storageInstance
	}

	store := cache.NewMemory()
	yelp := providers.NewYelp(config.Yelp, store)
	places := providers.NewGooglePlaces(config.Google, store)
	eventbrite := providers.NewEventbrite(config.Eventbrite, store)
	weather := providers.NewWeather(config.Weather, store)

	s := &Server{
		db:          database,
		parser:      scout.New(config.ParserConfig, archive),
		aggregator:  aggregate.New(yelp, places, eventbrite, weather),
		places:      places,
		store:       store,
		addr:        config.Addr,
		mux:         http.NewServeMux(),
		corsEnabled: config.CORSEnabled,
	}

	// Register routes
	s.registerRoutes()

	handler := s.middleware(s.mux)
	if config.CORSEnabled {
		handler = cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(handler)
	}

	// Create HTTP server
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/parse", s.handleParse)
	s.mux.HandleFunc("/api/travel-data", s.handleTravelData)
	s.mux.HandleFunc("/api/places/autocomplete", s.handleAutocomplete)
	s.mux.HandleFunc("/api/links", s.handleListLinks)
	s.mux.HandleFunc("/api/links/", s.handleLink) // Handles /api/links/{id}
	s.mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.store.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// middleware applies request logging to all routes
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip health checks to reduce noise
		if r.URL.Path != "/health" {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now(),
	}

	if s.db != nil {
		count, err := s.db.Count()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to get count")
			return
		}
		resp["count"] = count
	}

	respondJSON(w, http.StatusOK, resp)
}

// ParseRequest represents a link parse request
type ParseRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"` // Force re-parse even if stored
}

// handleParse parses a single URL into a candidate record, with
// read-through persistence when a database is configured.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	// Check for a stored record (unless force is true)
	if s.db != nil && !req.Force {
		existing, err := s.db.GetByURL(req.URL)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if existing != nil {
			existing.Cached = true
			respondJSON(w, http.StatusOK, existing)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	start := time.Now()
	rec := s.parser.Resolve(ctx, req.URL)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	metrics.ParseRequests.WithLabelValues(string(rec.SourceKind)).Inc()
	if !rec.RawSuccess {
		metrics.ParseFailures.WithLabelValues(string(rec.SourceKind)).Inc()
	}

	now := time.Now()
	link := &models.ParsedLink{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Slug:      slug.GenerateWithFallback(rec.Title, "link"),
		Record:    rec,
		FetchedAt: now,
		CreatedAt: now,
	}

	if s.db != nil {
		if err := s.db.SaveLink(link); err != nil {
			log.Printf("Failed to save link: %v", err)
			// Still return the result even if save fails
		}
	}

	respondJSON(w, http.StatusOK, link)
}

// TravelDataRequest represents a travel data aggregation request
type TravelDataRequest struct {
	Destination string   `json:"destination"`
	Interests   []string `json:"interests"`
	Budget      string   `json:"budget"`
	Duration    string   `json:"duration"`
	StartDate   string   `json:"start_date"` // RFC 3339 or YYYY-MM-DD
}

// handleTravelData aggregates travel data for a destination
func (s *Server) handleTravelData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req TravelDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Destination == "" {
		respondError(w, http.StatusBadRequest, "destination is required")
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := parseDate(req.StartDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		startDate = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result := s.aggregator.Gather(ctx, aggregate.Request{
		Destination: req.Destination,
		Interests:   req.Interests,
		Budget:      req.Budget,
		Duration:    req.Duration,
		StartDate:   startDate,
	})

	respondJSON(w, http.StatusOK, result)
}

// handleAutocomplete suggests places for a partial query
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	suggestions := []models.PlaceSuggestion{}
	if s.places.Enabled() {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		result, err := s.places.Autocomplete(ctx, query)
		if err != nil {
			respondError(w, http.StatusBadGateway, "autocomplete failed")
			return
		}
		suggestions = result
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// handleListLinks lists saved links with pagination
func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	// Parse pagination parameters
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		fmt.Sscanf(offsetStr, "%d", &offset)
	}

	// Enforce reasonable limits
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	links, err := s.db.List(limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	// Mark all as cached since they come from the database
	for _, link := range links {
		link.Cached = true
	}

	count, _ := s.db.Count()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"links":  links,
		"total":  count,
		"limit":  limit,
		"offset": offset,
	})
}

// handleLink handles GET and DELETE for a single saved link
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetLink(w, r, id)
	case http.MethodDelete:
		s.handleDeleteLink(w, r, id)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request, id string) {
	link, err := s.db.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	if link == nil {
		respondError(w, http.StatusNotFound, "link not found")
		return
	}

	link.Cached = true
	respondJSON(w, http.StatusOK, link)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request, id string) {
	err := s.db.DeleteByID(id)
	if err != nil {
		if strings.Contains(err.Error(), "no link found") {
			respondError(w, http.StatusNotFound, "link not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete link")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "link deleted successfully",
	})
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
