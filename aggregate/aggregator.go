// Package aggregate fans out a destination query to the travel-data
// providers and assembles the ranked per-category bundle.
package aggregate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/driftlabs/scout/metrics"
	"github.com/driftlabs/scout/models"
	"github.com/driftlabs/scout/providers"
)

// Per-category result caps.
const (
	restaurantLimit = 10
	cafeLimit       = 5
	attractionLimit = 10
	eventLimit      = 8
	nightlifeLimit  = 5

	forecastDays = 5
)

// YelpSource is the slice of the Yelp client the aggregator needs.
type YelpSource interface {
	Enabled() bool
	SearchBusinesses(ctx context.Context, q providers.BusinessQuery) ([]models.ScoredItem, error)
	SearchEvents(ctx context.Context, location string, limit int) ([]models.ScoredItem, error)
}

// PlacesSource is the slice of the Google Places client the
// aggregator needs.
type PlacesSource interface {
	Enabled() bool
	Search(ctx context.Context, q providers.PlaceQuery) ([]models.ScoredItem, error)
}

// EventsSource is the slice of the Eventbrite client the aggregator
// needs.
type EventsSource interface {
	Enabled() bool
	SearchEvents(ctx context.Context, q providers.EventQuery) ([]models.ScoredItem, error)
}

// WeatherSource is the slice of the weather client the aggregator
// needs.
type WeatherSource interface {
	Enabled() bool
	Forecast(ctx context.Context, city string, days int) ([]models.ForecastDay, error)
}

// Aggregator coordinates the provider fan-out. Any provider may be
// nil; its results are simply absent from the bundle.
type Aggregator struct {
	yelp    YelpSource
	places  PlacesSource
	events  EventsSource
	weather WeatherSource
}

// New creates an Aggregator over the given providers.
func New(yelp YelpSource, places PlacesSource, events EventsSource, weather WeatherSource) *Aggregator {
	return &Aggregator{
		yelp:    yelp,
		places:  places,
		events:  events,
		weather: weather,
	}
}

// Request describes one travel-data query.
type Request struct {
	Destination string
	Interests   []string
	Budget      string // low, medium, high, any
	Duration    string
	StartDate   time.Time
}

// sourceOrder fixes the order of metadata.sources_used regardless of
// which category task finishes first.
var sourceOrder = []string{
	"yelp_restaurants",
	"google_restaurants",
	"yelp_cafes",
	"google_cafes",
	"google_attractions",
	"yelp_nightlife",
	"yelp_events",
	"eventbrite",
	"openweather",
}

// Gather runs the category fetches concurrently and assembles the
// result. Individual provider failures are logged and tolerated; the
// bundle contains whatever succeeded.
func (a *Aggregator) Gather(ctx context.Context, req Request) models.AggregationResult {
	ctx, span := otel.Tracer("scout").Start(ctx, "aggregate.gather")
	defer span.End()
	span.SetAttributes(attribute.String("scout.destination", req.Destination))

	metrics.AggregationRequests.Inc()
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	result := models.AggregationResult{
		Destination: req.Destination,
		Restaurants: []models.ScoredItem{},
		Cafes:       []models.ScoredItem{},
		Attractions: []models.ScoredItem{},
		Nightlife:   []models.ScoredItem{},
		Events:      []models.ScoredItem{},
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sources = map[string]bool{}
	)

	markSource := func(name string) {
		mu.Lock()
		sources[name] = true
		mu.Unlock()
	}

	run := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	run(func() {
		items := a.gatherRestaurants(ctx, req, markSource)
		mu.Lock()
		result.Restaurants = items
		mu.Unlock()
	})

	run(func() {
		items := a.gatherCafes(ctx, req, markSource)
		mu.Lock()
		result.Cafes = items
		mu.Unlock()
	})

	run(func() {
		items := a.gatherAttractions(ctx, req, markSource)
		mu.Lock()
		result.Attractions = items
		mu.Unlock()
	})

	run(func() {
		items := a.gatherNightlife(ctx, req, markSource)
		mu.Lock()
		result.Nightlife = items
		mu.Unlock()
	})

	run(func() {
		items := a.gatherEvents(ctx, req, markSource)
		mu.Lock()
		result.Events = items
		mu.Unlock()
	})

	run(func() {
		forecast := a.gatherWeather(ctx, req, markSource)
		mu.Lock()
		result.Weather = forecast
		mu.Unlock()
	})

	wg.Wait()

	used := make([]string, 0, len(sources))
	for _, name := range sourceOrder {
		if sources[name] {
			used = append(used, name)
		}
	}

	result.Metadata = models.AggregationMetadata{
		SourcesUsed: used,
		TotalResults: len(result.Restaurants) +
			len(result.Attractions) +
			len(result.Events) +
			len(result.Cafes) +
			len(result.Nightlife),
		Timestamp: time.Now(),
	}
	return result
}

func (a *Aggregator) gatherRestaurants(ctx context.Context, req Request, markSource func(string)) []models.ScoredItem {
	var restaurants []models.ScoredItem

	if items := a.yelpBusinesses(ctx, providers.BusinessQuery{
		Location:   req.Destination,
		Categories: "restaurants",
		Limit:      15,
		Price:      budgetToYelpPrice(req.Budget),
	}); len(items) > 0 {
		restaurants = append(restaurants, items...)
		markSource("yelp_restaurants")
	}

	if items := a.googlePlaces(ctx, providers.PlaceQuery{
		Location: req.Destination,
		Type:     "restaurant",
		Query:    "best restaurants",
		Radius:   10000,
	}); len(items) > 0 {
		if len(items) > 10 {
			items = items[:10]
		}
		restaurants = append(restaurants, items...)
		markSource("google_restaurants")
	}

	restaurants = FilterByInterests(restaurants, req.Interests)
	return DedupeAndRank(restaurants, restaurantLimit)
}

func (a *Aggregator) gatherCafes(ctx context.Context, req Request, markSource func(string)) []models.ScoredItem {
	var cafes []models.ScoredItem

	if items := a.yelpBusinesses(ctx, providers.BusinessQuery{
		Location:   req.Destination,
		Categories: "coffee,cafes",
		Limit:      10,
	}); len(items) > 0 {
		cafes = append(cafes, items...)
		markSource("yelp_cafes")
	}

	if items := a.googlePlaces(ctx, providers.PlaceQuery{
		Location: req.Destination,
		Type:     "cafe",
		Radius:   10000,
	}); len(items) > 0 {
		if len(items) > 5 {
			items = items[:5]
		}
		cafes = append(cafes, items...)
		markSource("google_cafes")
	}

	return DedupeAndRank(cafes, cafeLimit)
}

func (a *Aggregator) gatherAttractions(ctx context.Context, req Request, markSource func(string)) []models.ScoredItem {
	var attractions []models.ScoredItem

	if items := a.googlePlaces(ctx, providers.PlaceQuery{
		Location: req.Destination,
		Type:     "tourist_attraction",
		Radius:   15000,
	}); len(items) > 0 {
		attractions = append(attractions, items...)
		markSource("google_attractions")
	}

	if wantsMuseums(req.Interests) {
		attractions = append(attractions, a.googlePlaces(ctx, providers.PlaceQuery{
			Location: req.Destination,
			Type:     "museum",
			Radius:   15000,
		})...)
	}

	return DedupeAndRank(attractions, attractionLimit)
}

func (a *Aggregator) gatherNightlife(ctx context.Context, req Request, markSource func(string)) []models.ScoredItem {
	if !wantsNightlife(req.Interests) {
		return []models.ScoredItem{}
	}

	var nightlife []models.ScoredItem
	if items := a.yelpBusinesses(ctx, providers.BusinessQuery{
		Location:   req.Destination,
		Categories: "bars,nightlife",
		Limit:      10,
	}); len(items) > 0 {
		nightlife = append(nightlife, items...)
		markSource("yelp_nightlife")
	}

	return DedupeAndRank(nightlife, nightlifeLimit)
}

func (a *Aggregator) gatherEvents(ctx context.Context, req Request, markSource func(string)) []models.ScoredItem {
	var events []models.ScoredItem

	if a.yelp != nil && a.yelp.Enabled() {
		items, err := a.yelp.SearchEvents(ctx, req.Destination, 10)
		if err != nil {
			logProviderError("yelp events", err)
		} else if len(items) > 0 {
			events = append(events, items...)
			markSource("yelp_events")
		}
	}

	if a.events != nil && a.events.Enabled() {
		items, err := a.events.SearchEvents(ctx, providers.EventQuery{
			Location:  req.Destination,
			StartDate: req.StartDate,
			Limit:     15,
		})
		if err != nil {
			logProviderError("eventbrite", err)
		} else if len(items) > 0 {
			events = append(events, items...)
			markSource("eventbrite")
		}
	}

	events = FilterByInterests(events, req.Interests)
	return DedupeAndRank(events, eventLimit)
}

func (a *Aggregator) gatherWeather(ctx context.Context, req Request, markSource func(string)) []models.ForecastDay {
	if a.weather == nil || !a.weather.Enabled() {
		return nil
	}
	forecast, err := a.weather.Forecast(ctx, req.Destination, forecastDays)
	if err != nil {
		logProviderError("openweather", err)
		return nil
	}
	if len(forecast) > 0 {
		markSource("openweather")
	}
	return forecast
}

func (a *Aggregator) yelpBusinesses(ctx context.Context, q providers.BusinessQuery) []models.ScoredItem {
	if a.yelp == nil || !a.yelp.Enabled() {
		return nil
	}
	items, err := a.yelp.SearchBusinesses(ctx, q)
	if err != nil {
		logProviderError("yelp", err)
		return nil
	}
	return items
}

func (a *Aggregator) googlePlaces(ctx context.Context, q providers.PlaceQuery) []models.ScoredItem {
	if a.places == nil || !a.places.Enabled() {
		return nil
	}
	items, err := a.places.Search(ctx, q)
	if err != nil {
		logProviderError("google", err)
		return nil
	}
	return items
}

func logProviderError(provider string, err error) {
	if errors.Is(err, providers.ErrMissingAPIKey) {
		return
	}
	log.Printf("provider %s failed: %v", provider, err)
}

// budgetToYelpPrice converts a budget level to Yelp price buckets.
// Unknown budgets mean no filter.
func budgetToYelpPrice(budget string) string {
	switch strings.ToLower(budget) {
	case "low":
		return "1,2"
	case "medium":
		return "2,3"
	case "high":
		return "3,4"
	case "any":
		return "1,2,3,4"
	default:
		return ""
	}
}

func wantsNightlife(interests []string) bool {
	joined := strings.ToLower(strings.Join(interests, " "))
	for _, kw := range []string{"nightlife", "bars", "drinks", "club"} {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

func wantsMuseums(interests []string) bool {
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		for _, kw := range []string{"museum", "art", "history", "culture"} {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
