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

const yelpBaseURL = "https://api.yelp.com/v3"

// Yelp is a Yelp Fusion API client for business and event search.
type Yelp struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   cache.Store
}

// YelpConfig contains Yelp client configuration.
type YelpConfig struct {
	APIKey  string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// NewYelp creates a Yelp client. store can be nil to disable caching.
func NewYelp(cfg YelpConfig, store cache.Store) *Yelp {
	if cfg.BaseURL == "" {
		cfg.BaseURL = yelpBaseURL
	}
	return &Yelp{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newHTTPClient(cfg.Timeout),
		cache:   store,
	}
}

// Enabled reports whether the client has credentials.
func (y *Yelp) Enabled() bool { return y.apiKey != "" }

// BusinessQuery describes a business search.
type BusinessQuery struct {
	Location   string
	Term       string
	Categories string // Yelp category aliases, comma separated
	Price      string // "1,2,3,4" style price buckets
	Limit      int
}

type yelpBusinessResponse struct {
	Businesses []struct {
		Name        string  `json:"name"`
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"review_count"`
		Price       string  `json:"price"`
		Categories  []struct {
			Title string `json:"title"`
		} `json:"categories"`
		Location struct {
			DisplayAddress []string `json:"display_address"`
		} `json:"location"`
		Phone       string `json:"phone"`
		URL         string `json:"url"`
		ImageURL    string `json:"image_url"`
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
	} `json:"businesses"`
}

// SearchBusinesses searches Yelp businesses around a location.
func (y *Yelp) SearchBusinesses(ctx context.Context, q BusinessQuery) ([]models.ScoredItem, error) {
	if !y.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 50 {
		q.Limit = 50
	}

	key := fmt.Sprintf("yelp:biz:%s:%s:%s:%s:%d", q.Location, q.Term, q.Categories, q.Price, q.Limit)
	if items, ok := cached[[]models.ScoredItem](y.cache, "yelp", key); ok {
		return items, nil
	}

	params := url.Values{}
	params.Set("location", q.Location)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort_by", "best_match")
	if q.Term != "" {
		params.Set("term", q.Term)
	}
	if q.Categories != "" {
		params.Set("categories", q.Categories)
	}
	if q.Price != "" {
		params.Set("price", q.Price)
	}

	var resp yelpBusinessResponse
	reqURL := y.baseURL + "/businesses/search?" + params.Encode()
	if err := getJSON(ctx, y.client, "yelp", reqURL, y.authHeader(), &resp); err != nil {
		return nil, err
	}

	items := make([]models.ScoredItem, 0, len(resp.Businesses))
	for _, biz := range resp.Businesses {
		b := biz
		categories := make([]string, 0, len(b.Categories))
		for _, c := range b.Categories {
			categories = append(categories, c.Title)
		}
		item := models.ScoredItem{
			Source:      "yelp",
			Kind:        "business",
			Name:        b.Name,
			ReviewCount: &b.ReviewCount,
			Price:       b.Price,
			Categories:  categories,
			Address:     strings.Join(b.Location.DisplayAddress, ", "),
			Phone:       b.Phone,
			URL:         b.URL,
			ImageURL:    b.ImageURL,
		}
		if b.Rating > 0 {
			item.Rating = &b.Rating
		}
		if b.Coordinates.Latitude != 0 || b.Coordinates.Longitude != 0 {
			item.Coordinates = &models.Coordinates{Lat: b.Coordinates.Latitude, Lng: b.Coordinates.Longitude}
		}
		items = append(items, item)
	}

	store(y.cache, key, items, searchTTL)
	return items, nil
}

type yelpEventResponse struct {
	Events []struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		TimeStart    string  `json:"time_start"`
		TimeEnd      string  `json:"time_end"`
		IsFree       bool    `json:"is_free"`
		Category     string  `json:"category"`
		EventSiteURL string  `json:"event_site_url"`
		ImageURL     string  `json:"image_url"`
		Location     struct {
			DisplayAddress []string `json:"display_address"`
		} `json:"location"`
	} `json:"events"`
}

// SearchEvents searches Yelp events around a location.
func (y *Yelp) SearchEvents(ctx context.Context, location string, limit int) ([]models.ScoredItem, error) {
	if !y.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	key := fmt.Sprintf("yelp:events:%s:%d", location, limit)
	if items, ok := cached[[]models.ScoredItem](y.cache, "yelp", key); ok {
		return items, nil
	}

	params := url.Values{}
	params.Set("location", location)
	params.Set("limit", strconv.Itoa(limit))

	var resp yelpEventResponse
	reqURL := y.baseURL + "/events?" + params.Encode()
	if err := getJSON(ctx, y.client, "yelp", reqURL, y.authHeader(), &resp); err != nil {
		return nil, err
	}

	items := make([]models.ScoredItem, 0, len(resp.Events))
	for _, ev := range resp.Events {
		items = append(items, models.ScoredItem{
			Source:      "yelp",
			Kind:        "event",
			Name:        ev.Name,
			Description: ev.Description,
			StartTime:   ev.TimeStart,
			EndTime:     ev.TimeEnd,
			IsFree:      ev.IsFree,
			Category:    ev.Category,
			URL:         ev.EventSiteURL,
			ImageURL:    ev.ImageURL,
			Address:     strings.Join(ev.Location.DisplayAddress, ", "),
		})
	}

	store(y.cache, key, items, searchTTL)
	return items, nil
}

func (y *Yelp) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + y.apiKey}
}
