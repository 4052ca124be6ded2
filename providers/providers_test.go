package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/driftlabs/scout/cache"
)

// jsonServer returns a test server that records each request's query
// parameters and serves the given body.
func jsonServer(t *testing.T, body string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestYelpSearchBusinesses(t *testing.T) {
	srv, queries := jsonServer(t, `{
		"businesses": [{
			"name": "Lucali",
			"rating": 4.6,
			"review_count": 2100,
			"price": "$$",
			"categories": [{"title": "Pizza"}, {"title": "Italian"}],
			"location": {"display_address": ["575 Henry St", "Brooklyn, NY 11231"]},
			"phone": "+17188584086",
			"url": "https://yelp.com/biz/lucali",
			"image_url": "https://img.example/lucali.jpg",
			"coordinates": {"latitude": 40.68, "longitude": -74.0}
		}, {
			"name": "Unrated Spot",
			"rating": 0,
			"review_count": 0
		}]
	}`)

	y := NewYelp(YelpConfig{APIKey: "key", BaseURL: srv.URL}, nil)
	items, err := y.SearchBusinesses(context.Background(), BusinessQuery{
		Location:   "Brooklyn",
		Categories: "restaurants",
		Price:      "1,2",
		Limit:      15,
	})
	if err != nil {
		t.Fatalf("SearchBusinesses: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}

	got := items[0]
	if got.Name != "Lucali" || got.Source != "yelp" || got.Kind != "business" {
		t.Errorf("item = %+v", got)
	}
	if got.Rating == nil || *got.Rating != 4.6 {
		t.Errorf("Rating = %v", got.Rating)
	}
	if got.ReviewCount == nil || *got.ReviewCount != 2100 {
		t.Errorf("ReviewCount = %v", got.ReviewCount)
	}
	if got.Address != "575 Henry St, Brooklyn, NY 11231" {
		t.Errorf("Address = %q", got.Address)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "Pizza" {
		t.Errorf("Categories = %v", got.Categories)
	}
	if got.Coordinates == nil || got.Coordinates.Lat != 40.68 {
		t.Errorf("Coordinates = %v", got.Coordinates)
	}

	// A zero rating must stay unset rather than becoming 0.0.
	if items[1].Rating != nil {
		t.Errorf("zero rating should map to nil, got %v", *items[1].Rating)
	}

	q := (*queries)[0]
	if q.Get("location") != "Brooklyn" || q.Get("categories") != "restaurants" {
		t.Errorf("query = %v", q)
	}
	if q.Get("price") != "1,2" || q.Get("sort_by") != "best_match" {
		t.Errorf("query = %v", q)
	}
}

func TestYelpSearchBusinessesCaches(t *testing.T) {
	srv, queries := jsonServer(t, `{"businesses": [{"name": "Cached Cafe"}]}`)

	store := cache.NewMemory()
	defer store.Close()

	y := NewYelp(YelpConfig{APIKey: "key", BaseURL: srv.URL}, store)
	q := BusinessQuery{Location: "Austin", Categories: "coffee,cafes"}

	if _, err := y.SearchBusinesses(context.Background(), q); err != nil {
		t.Fatalf("first call: %v", err)
	}
	items, err := y.SearchBusinesses(context.Background(), q)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if len(*queries) != 1 {
		t.Errorf("server saw %d requests, want 1", len(*queries))
	}
	if len(items) != 1 || items[0].Name != "Cached Cafe" {
		t.Errorf("cached items = %v", items)
	}
}

func TestYelpSearchBusinessesNoKey(t *testing.T) {
	y := NewYelp(YelpConfig{}, nil)
	if y.Enabled() {
		t.Error("client without key reports enabled")
	}
	if _, err := y.SearchBusinesses(context.Background(), BusinessQuery{Location: "x"}); err != ErrMissingAPIKey {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestYelpSearchEvents(t *testing.T) {
	srv, _ := jsonServer(t, `{
		"events": [{
			"name": "Night Market",
			"description": "Food stalls",
			"time_start": "2026-09-01T18:00:00",
			"is_free": true,
			"category": "food-and-drink",
			"event_site_url": "https://yelp.com/events/1",
			"location": {"display_address": ["Main St", "Austin, TX"]}
		}]
	}`)

	y := NewYelp(YelpConfig{APIKey: "key", BaseURL: srv.URL}, nil)
	items, err := y.SearchEvents(context.Background(), "Austin", 10)
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	got := items[0]
	if got.Kind != "event" || got.Name != "Night Market" || !got.IsFree {
		t.Errorf("item = %+v", got)
	}
	if got.Address != "Main St, Austin, TX" {
		t.Errorf("Address = %q", got.Address)
	}
}

func TestGooglePlacesSearchCoordinatePassthrough(t *testing.T) {
	srv, queries := jsonServer(t, `{
		"results": [{
			"name": "Central Park",
			"rating": 4.8,
			"user_ratings_total": 250000,
			"price_level": 0,
			"types": ["park", "tourist_attraction"],
			"formatted_address": "New York, NY",
			"geometry": {"location": {"lat": 40.78, "lng": -73.97}}
		}]
	}`)

	g := NewGooglePlaces(GoogleConfig{APIKey: "key", BaseURL: srv.URL, GeocodeURL: srv.URL}, nil)
	items, err := g.Search(context.Background(), PlaceQuery{
		Location: "40.78,-73.97",
		Type:     "tourist_attraction",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}

	got := items[0]
	if got.Source != "google" || got.Kind != "place" {
		t.Errorf("item = %+v", got)
	}
	if got.RatingsTotal == nil || *got.RatingsTotal != 250000 {
		t.Errorf("RatingsTotal = %v", got.RatingsTotal)
	}
	if got.Price != "Free" {
		t.Errorf("Price = %q, want Free for level 0", got.Price)
	}

	// Coordinate locations must skip the geocoding round trip.
	if len(*queries) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(*queries))
	}
	if loc := (*queries)[0].Get("location"); loc != "40.78,-73.97" {
		t.Errorf("location = %q", loc)
	}
}

func TestGooglePlacesSearchGeocodesPlaceNames(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "textsearch") {
			w.Write([]byte(`{"results": [{"name": "Result", "geometry": {"location": {"lat": 1, "lng": 2}}}]}`))
			return
		}
		w.Write([]byte(`{"results": [{"geometry": {"location": {"lat": 48.8566, "lng": 2.3522}}}]}`))
	}))
	defer srv.Close()

	g := NewGooglePlaces(GoogleConfig{APIKey: "key", BaseURL: srv.URL, GeocodeURL: srv.URL}, nil)
	items, err := g.Search(context.Background(), PlaceQuery{Location: "Paris", Type: "cafe"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if len(paths) != 2 {
		t.Fatalf("server saw %d requests, want geocode then search", len(paths))
	}
	if !strings.Contains(paths[1], "textsearch") {
		t.Errorf("second request path = %q", paths[1])
	}
}

func TestGooglePlacesAutocomplete(t *testing.T) {
	srv, _ := jsonServer(t, `{
		"predictions": [
			{"place_id": "p1", "description": "Paris, France", "structured_formatting": {"main_text": "Paris", "secondary_text": "France"}},
			{"place_id": "p2", "description": "Paris, TX"},
			{"place_id": "p3", "description": "c"},
			{"place_id": "p4", "description": "d"},
			{"place_id": "p5", "description": "e"},
			{"place_id": "p6", "description": "dropped"}
		]
	}`)

	g := NewGooglePlaces(GoogleConfig{APIKey: "key", BaseURL: srv.URL}, nil)
	suggestions, err := g.Autocomplete(context.Background(), "par")
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("got %d suggestions, want cap at 5", len(suggestions))
	}
	if suggestions[0].Name != "Paris" || suggestions[0].Address != "France" {
		t.Errorf("suggestions[0] = %+v", suggestions[0])
	}
	// Missing structured formatting falls back to the description.
	if suggestions[1].Name != "Paris, TX" {
		t.Errorf("suggestions[1].Name = %q", suggestions[1].Name)
	}
}

func TestEventbriteSearchEventsDefaults(t *testing.T) {
	longDesc := strings.Repeat("x", 400)
	srv, queries := jsonServer(t, `{
		"events": [{
			"name": {"text": "Jazz Night"},
			"description": {"text": "`+longDesc+`"},
			"start": {"local": "2026-09-01T19:00:00"},
			"end": {"local": "2026-09-01T23:00:00"},
			"is_free": false,
			"url": "https://eventbrite.com/e/1",
			"venue": {"name": "Blue Note", "address": {"localized_address_display": "131 W 3rd St"}},
			"organizer": {"name": "Blue Note NYC"},
			"category": {"name": "Music"}
		}, {
			"name": {"text": "Virtual Meetup"},
			"description": {"text": "short"},
			"is_free": true
		}]
	}`)

	e := NewEventbrite(EventbriteConfig{Token: "tok", BaseURL: srv.URL}, nil)
	e.now = func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) }

	items, err := e.SearchEvents(context.Background(), EventQuery{Location: "New York"})
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}

	got := items[0]
	if got.Name != "Jazz Night" || got.VenueName != "Blue Note" || got.Organizer != "Blue Note NYC" {
		t.Errorf("item = %+v", got)
	}
	if len(got.Description) != maxEventDescriptionLen {
		t.Errorf("description length = %d, want %d", len(got.Description), maxEventDescriptionLen)
	}

	// A venueless event shows as online.
	if items[1].VenueName != "Online" {
		t.Errorf("VenueName = %q, want Online", items[1].VenueName)
	}

	q := (*queries)[0]
	if q.Get("start_date.range_start") != "2026-08-26T12:00:00Z" {
		t.Errorf("range_start = %q", q.Get("start_date.range_start"))
	}
	if q.Get("start_date.range_end") != "2026-09-02T12:00:00Z" {
		t.Errorf("range_end = %q, want a seven day window", q.Get("start_date.range_end"))
	}
	if q.Get("expand") != "venue,organizer" || q.Get("price") != "free,paid" {
		t.Errorf("query = %v", q)
	}
}

func TestEventbriteDescriptionTruncatesOnRuneBoundary(t *testing.T) {
	// A multibyte rune straddling the cut must survive whole, not be
	// split into invalid UTF-8.
	desc := strings.Repeat("a", 299) + "éé"
	srv, _ := jsonServer(t, `{
		"events": [{
			"name": {"text": "Accented"},
			"description": {"text": "`+desc+`"}
		}]
	}`)

	e := NewEventbrite(EventbriteConfig{Token: "tok", BaseURL: srv.URL}, nil)
	items, err := e.SearchEvents(context.Background(), EventQuery{Location: "Paris"})
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}

	got := items[0].Description
	if !utf8.ValidString(got) {
		t.Fatalf("truncated description is invalid UTF-8: last bytes %q", got[len(got)-4:])
	}
	if n := len([]rune(got)); n != maxEventDescriptionLen {
		t.Errorf("rune length = %d, want %d", n, maxEventDescriptionLen)
	}
	if !strings.HasSuffix(got, "é") {
		t.Errorf("description should end with the surviving rune, got %q", got[len(got)-4:])
	}
}

func TestWeatherForecastGroupsByDay(t *testing.T) {
	srv, queries := jsonServer(t, `{
		"list": [
			{"dt_txt": "2026-09-01 09:00:00", "main": {"temp": 60, "humidity": 70}, "weather": [{"description": "light rain"}], "wind": {"speed": 5}},
			{"dt_txt": "2026-09-01 12:00:00", "main": {"temp": 70, "humidity": 60}, "weather": [{"description": "clear sky"}], "wind": {"speed": 7}},
			{"dt_txt": "2026-09-01 15:00:00", "main": {"temp": 80, "humidity": 50}, "weather": [{"description": "light rain"}], "wind": {"speed": 9}},
			{"dt_txt": "2026-09-02 12:00:00", "main": {"temp": 65, "humidity": 55}, "weather": [{"description": "clear sky"}], "wind": {"speed": 4}}
		]
	}`)

	w := NewWeather(WeatherConfig{APIKey: "key", BaseURL: srv.URL}, nil)
	forecast, err := w.Forecast(context.Background(), "Seattle", 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(forecast) != 2 {
		t.Fatalf("got %d days", len(forecast))
	}

	day := forecast[0]
	if day.Date != "2026-09-01" {
		t.Errorf("Date = %q", day.Date)
	}
	if day.TempAvg != 70 || day.TempMin != 60 || day.TempMax != 80 {
		t.Errorf("temps = avg %f min %f max %f", day.TempAvg, day.TempMin, day.TempMax)
	}
	if day.Description != "light rain" {
		t.Errorf("Description = %q, want the most frequent", day.Description)
	}

	q := (*queries)[0]
	if q.Get("units") != "imperial" || q.Get("cnt") != "40" {
		t.Errorf("query = %v", q)
	}
}

func TestWeatherMostFrequentTieBreak(t *testing.T) {
	// On a tie the first seen description wins.
	got := mostFrequent([]string{"clouds", "rain", "rain", "clouds"})
	if got != "clouds" {
		t.Errorf("mostFrequent = %q, want first seen on tie", got)
	}
}

func TestLooksLikeCoordinates(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"40.78,-73.97", true},
		{"40, -73", true},
		{"Paris", false},
		{"Paris, France", false},
		{"1,2,3", false},
	}
	for _, tt := range tests {
		if got := looksLikeCoordinates(tt.in); got != tt.want {
			t.Errorf("looksLikeCoordinates(%q) = %v", tt.in, got)
		}
	}
}
