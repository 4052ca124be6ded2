package models

import (
	"strings"
	"time"
)

// Category is the fixed taxonomy every extracted item maps into.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryBar        Category = "bar"
	CategoryCafe       Category = "cafe"
	CategoryConcert    Category = "concert"
	CategoryEvent      Category = "event"
	CategoryActivity   Category = "activity"
	CategoryTrip       Category = "trip"
	CategoryOther      Category = "other"
)

// SourceKind identifies which adapter or provider produced a record.
type SourceKind string

const (
	SourceGoogleMaps      SourceKind = "google_maps"
	SourceYelp            SourceKind = "yelp"
	SourceTikTok          SourceKind = "tiktok"
	SourceInstagram       SourceKind = "instagram"
	SourceReddit          SourceKind = "reddit"
	SourceEventbrite      SourceKind = "eventbrite"
	SourceGenericURL      SourceKind = "generic_url"
	SourceGooglePlaces    SourceKind = "google_places"
	SourceYelpBusiness    SourceKind = "yelp_business"
	SourceEventbriteEvent SourceKind = "eventbrite_event"
	SourceOpenWeather     SourceKind = "openweather"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CandidateRecord is the canonical output of every link adapter.
// When RawSuccess is false all content fields are empty and Error
// carries the reason. A record can also be a "soft success":
// RawSuccess true with Error set to a user-facing instruction.
type CandidateRecord struct {
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Category     Category     `json:"category,omitempty"`
	Address      string       `json:"address,omitempty"`
	LocationName string       `json:"location_name,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	SourceKind   SourceKind   `json:"source_kind"`
	RawSuccess   bool         `json:"raw_success"`
	Error        string       `json:"error,omitempty"`
}

// ParsedLink wraps a CandidateRecord for persistence, keyed by the
// original URL.
type ParsedLink struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	Slug      string          `json:"slug,omitempty"`
	Record    CandidateRecord `json:"record"`
	FetchedAt time.Time       `json:"fetched_at"`
	CreatedAt time.Time       `json:"created_at"`
	Cached    bool            `json:"cached"`
}

// ScoredItem is a business/place/event entity plus its ranking inputs.
// ReviewCount and RatingsTotal stay separate because the score proxy
// for a missing rating only uses the places-style ratings total.
type ScoredItem struct {
	Source       string       `json:"source"`
	Kind         string       `json:"type"` // business, place, event
	Name         string       `json:"name"`
	Rating       *float64     `json:"rating,omitempty"`
	ReviewCount  *int         `json:"review_count,omitempty"`
	RatingsTotal *int         `json:"user_ratings_total,omitempty"`
	Price        string       `json:"price,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	Description  string       `json:"description,omitempty"`
	Address      string       `json:"address,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	URL          string       `json:"url,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	StartTime    string       `json:"start_time,omitempty"`
	EndTime      string       `json:"end_time,omitempty"`
	IsFree       bool         `json:"is_free,omitempty"`
	VenueName    string       `json:"venue_name,omitempty"`
	Organizer    string       `json:"organizer,omitempty"`
	Category     string       `json:"category,omitempty"`
}

// NameKey returns the dedup identity for an item: its name lowercased
// and trimmed.
func (s ScoredItem) NameKey() string {
	return strings.TrimSpace(strings.ToLower(s.Name))
}

// ForecastDay is one day of aggregated weather.
type ForecastDay struct {
	Source      string  `json:"source"`
	Date        string  `json:"date"`
	TempAvg     float64 `json:"temp_avg"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// AggregationMetadata is a frozen snapshot taken when the bundle is
// assembled; TotalResults is not recomputed afterwards.
type AggregationMetadata struct {
	SourcesUsed  []string  `json:"sources_used"`
	TotalResults int       `json:"total_results"`
	Timestamp    time.Time `json:"timestamp"`
}

// AggregationResult is the per-destination bundle of ranked category
// lists plus weather.
type AggregationResult struct {
	Destination string              `json:"destination"`
	Restaurants []ScoredItem        `json:"restaurants"`
	Cafes       []ScoredItem        `json:"cafes"`
	Attractions []ScoredItem        `json:"attractions"`
	Nightlife   []ScoredItem        `json:"nightlife"`
	Events      []ScoredItem        `json:"events"`
	Weather     []ForecastDay       `json:"weather,omitempty"`
	Metadata    AggregationMetadata `json:"metadata"`
}

// PlaceSuggestion is one autocomplete result.
type PlaceSuggestion struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
