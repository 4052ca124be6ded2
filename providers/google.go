package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/driftlabs/scout/cache"
	"github.com/driftlabs/scout/models"
)

const (
	googlePlacesBaseURL  = "https://maps.googleapis.com/maps/api/place"
	googleGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode"
)

// GooglePlaces is a Google Places / Geocoding API client.
type GooglePlaces struct {
	apiKey     string
	baseURL    string
	geocodeURL string
	client     *http.Client
	cache      cache.Store
}

// GoogleConfig contains Google Places client configuration.
type GoogleConfig struct {
	APIKey     string
	BaseURL    string // overridable for tests
	GeocodeURL string // overridable for tests
	Timeout    time.Duration
}

// NewGooglePlaces creates a Places client. store can be nil to disable
// caching.
func NewGooglePlaces(cfg GoogleConfig, store cache.Store) *GooglePlaces {
	if cfg.BaseURL == "" {
		cfg.BaseURL = googlePlacesBaseURL
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = googleGeocodeBaseURL
	}
	return &GooglePlaces{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		geocodeURL: strings.TrimRight(cfg.GeocodeURL, "/"),
		client:     newHTTPClient(cfg.Timeout),
		cache:      store,
	}
}

// Enabled reports whether the client has credentials.
func (g *GooglePlaces) Enabled() bool { return g.apiKey != "" }

// Geocode converts an address or city name into coordinates.
// Geocoding results are stable, so they cache for a day.
func (g *GooglePlaces) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if !g.Enabled() {
		return nil, ErrMissingAPIKey
	}

	key := "google:geocode:" + address
	if coords, ok := cached[*models.Coordinates](g.cache, "google", key); ok {
		return coords, nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("address", address)

	var resp struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := getJSON(ctx, g.client, "google", g.geocodeURL+"/json?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}

	loc := resp.Results[0].Geometry.Location
	coords := &models.Coordinates{Lat: loc.Lat, Lng: loc.Lng}
	store(g.cache, key, coords, geocodeTTL)
	return coords, nil
}

// PlaceQuery describes a text search.
type PlaceQuery struct {
	Location string // city name or "lat,lng"
	Query    string
	Type     string // restaurant, cafe, museum...
	Radius   int    // meters, defaults to 5000
}

type googlePlacesResponse struct {
	Results []struct {
		Name             string   `json:"name"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		PriceLevel       *int     `json:"price_level"`
		Types            []string `json:"types"`
		FormattedAddress string   `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Search runs a Places text search around a location. Place-name
// locations are geocoded first.
func (g *GooglePlaces) Search(ctx context.Context, q PlaceQuery) ([]models.ScoredItem, error) {
	if !g.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if q.Radius <= 0 {
		q.Radius = 5000
	}
	if q.Radius > 50000 {
		q.Radius = 50000
	}

	location := q.Location
	if !looksLikeCoordinates(location) {
		coords, err := g.Geocode(ctx, location)
		if err != nil {
			return nil, err
		}
		location = fmt.Sprintf("%f,%f", coords.Lat, coords.Lng)
	}

	key := fmt.Sprintf("google:search:%s:%s:%s:%d", location, q.Query, q.Type, q.Radius)
	if items, ok := cached[[]models.ScoredItem](g.cache, "google", key); ok {
		return items, nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("location", location)
	params.Set("radius", strconv.Itoa(q.Radius))
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	var resp googlePlacesResponse
	reqURL := g.baseURL + "/textsearch/json?" + params.Encode()
	if err := getJSON(ctx, g.client, "google", reqURL, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ScoredItem, 0, len(resp.Results))
	for _, place := range resp.Results {
		pl := place
		item := models.ScoredItem{
			Source:       "google",
			Kind:         "place",
			Name:         pl.Name,
			RatingsTotal: &pl.UserRatingsTotal,
			Price:        priceLevelString(pl.PriceLevel),
			Categories:   pl.Types,
			Address:      pl.FormattedAddress,
			Coordinates:  &models.Coordinates{Lat: pl.Geometry.Location.Lat, Lng: pl.Geometry.Location.Lng},
		}
		if pl.Rating > 0 {
			item.Rating = &pl.Rating
		}
		items = append(items, item)
	}

	store(g.cache, key, items, searchTTL)
	return items, nil
}

// Autocomplete returns up to five place suggestions for a partial
// query. Suggestions cache for a day.
func (g *GooglePlaces) Autocomplete(ctx context.Context, input string) ([]models.PlaceSuggestion, error) {
	if !g.Enabled() {
		return nil, ErrMissingAPIKey
	}

	key := "google:autocomplete:" + input
	if suggestions, ok := cached[[]models.PlaceSuggestion](g.cache, "google", key); ok {
		return suggestions, nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("input", input)

	var resp struct {
		Predictions []struct {
			PlaceID              string `json:"place_id"`
			Description          string `json:"description"`
			StructuredFormatting struct {
				MainText      string `json:"main_text"`
				SecondaryText string `json:"secondary_text"`
			} `json:"structured_formatting"`
		} `json:"predictions"`
	}
	reqURL := g.baseURL + "/autocomplete/json?" + params.Encode()
	if err := getJSON(ctx, g.client, "google", reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) > 5 {
		resp.Predictions = resp.Predictions[:5]
	}

	suggestions := make([]models.PlaceSuggestion, 0, len(resp.Predictions))
	for _, pred := range resp.Predictions {
		name := pred.StructuredFormatting.MainText
		if name == "" {
			name = pred.Description
		}
		suggestions = append(suggestions, models.PlaceSuggestion{
			PlaceID: pred.PlaceID,
			Name:    name,
			Address: pred.StructuredFormatting.SecondaryText,
		})
	}

	store(g.cache, key, suggestions, geocodeTTL)
	return suggestions, nil
}

// priceLevelString converts Google's 0-4 price level to dollar signs.
func priceLevelString(level *int) string {
	if level == nil {
		return ""
	}
	if *level <= 0 {
		return "Free"
	}
	return strings.Repeat("$", *level)
}

// looksLikeCoordinates reports whether s is a "lat,lng" pair rather
// than a place name.
func looksLikeCoordinates(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return false
	}
	for _, part := range parts {
		if _, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err != nil {
			return false
		}
	}
	return true
}
