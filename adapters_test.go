package scout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/driftlabs/scout/models"
)

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseGenericRestaurantJSONLD(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Some Page" />
	<script type="application/ld+json">
	{
		"@type": "Restaurant",
		"name": "Lucali",
		"description": "Thin crust pizza",
		"address": {
			"@type": "PostalAddress",
			"streetAddress": "575 Henry St",
			"addressLocality": "Brooklyn",
			"addressRegion": "NY",
			"postalCode": "11231"
		},
		"geo": {"latitude": 40.68, "longitude": -74.0}
	}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseGeneric(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseGeneric: %v", err)
	}

	if !rec.RawSuccess {
		t.Fatalf("expected success, got %q", rec.Error)
	}
	if rec.Title != "Lucali" {
		t.Errorf("Title = %q, want JSON-LD name over og:title", rec.Title)
	}
	if rec.Category != models.CategoryRestaurant {
		t.Errorf("Category = %q, want restaurant", rec.Category)
	}
	if rec.Address != "575 Henry St, Brooklyn, NY, 11231" {
		t.Errorf("Address = %q", rec.Address)
	}
	if rec.Coordinates == nil || rec.Coordinates.Lat != 40.68 {
		t.Errorf("Coordinates = %+v", rec.Coordinates)
	}
}

func TestParseGenericEventFallback(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<script type="application/ld+json">
	{
		"@type": "Event",
		"name": "Jazz Night",
		"location": {"name": "Blue Note"}
	}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseGeneric(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseGeneric: %v", err)
	}
	if rec.Category != models.CategoryEvent {
		t.Errorf("Category = %q, want event", rec.Category)
	}
	if rec.LocationName != "Blue Note" {
		t.Errorf("LocationName = %q", rec.LocationName)
	}
}

func TestParseGenericNoTitle(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html><html><head></head><body><p>nothing</p></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseGeneric(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseGeneric: %v", err)
	}
	if rec.RawSuccess {
		t.Fatal("expected failure record for a page with no title")
	}
	if rec.Error != "Could not extract details from URL" {
		t.Errorf("Error = %q", rec.Error)
	}
}

func TestParseYelp(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Lucali - Yelp" />
	<meta property="og:description" content="Famous thin crust" />
	<script type="application/ld+json">
	{
		"@type": "Restaurant",
		"name": "Lucali",
		"address": "575 Henry St, Brooklyn"
	}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseYelp(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseYelp: %v", err)
	}
	if rec.Title != "Lucali" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.SourceKind != models.SourceYelp {
		t.Errorf("SourceKind = %q", rec.SourceKind)
	}
	if rec.Category != models.CategoryRestaurant {
		t.Errorf("Category = %q, want restaurant default", rec.Category)
	}
	if rec.Address != "575 Henry St, Brooklyn" {
		t.Errorf("Address = %q", rec.Address)
	}
}

func TestParseEventbrite(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Food Festival | Eventbrite" />
	<script type="application/ld+json">
	{
		"@type": "Event",
		"name": "Brooklyn Food Festival",
		"description": "A day of eating",
		"location": {
			"name": "Prospect Park",
			"address": {"streetAddress": "95 Prospect Park West", "addressLocality": "Brooklyn"}
		}
	}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseEventbrite(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseEventbrite: %v", err)
	}
	if !rec.RawSuccess {
		t.Fatalf("expected success, got %q", rec.Error)
	}
	if rec.Title != "Brooklyn Food Festival" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Category != models.CategoryEvent {
		t.Errorf("Category = %q, want forced event", rec.Category)
	}
	if rec.LocationName != "Prospect Park" {
		t.Errorf("LocationName = %q", rec.LocationName)
	}
	if rec.Address != "Prospect Park, 95 Prospect Park West, Brooklyn" {
		t.Errorf("Address = %q", rec.Address)
	}
}

func TestParseTikTokSoftSuccessOnFetchFailure(t *testing.T) {
	p := New(DefaultConfig(), nil)

	rec, err := p.parseTikTok(context.Background(), "http://127.0.0.1:1/video")
	if err != nil {
		t.Fatalf("parseTikTok must not hard-fail: %v", err)
	}
	if !rec.RawSuccess {
		t.Fatal("TikTok fetch failure must degrade to a soft success")
	}
	if rec.Error != "TikTok content detected. Please add details manually." {
		t.Errorf("Error = %q", rec.Error)
	}
	if rec.Title != "" {
		t.Errorf("soft success must not invent a title, got %q", rec.Title)
	}
}

func TestParseTikTokHydrationState(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="user on TikTok" />
	<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">
	{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{"desc":"Best ramen in Tokyo, must eat here","challenges":[{"title":"foodtok"}]}}}}}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseTikTok(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseTikTok: %v", err)
	}
	if !rec.RawSuccess {
		t.Fatalf("expected success, got %q", rec.Error)
	}
	if rec.Description != "Best ramen in Tokyo, must eat here" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Category != models.CategoryRestaurant {
		t.Errorf("Category = %q, want restaurant from caption", rec.Category)
	}
}

func TestParseTikTokTitleFromCaptionFirstLine(t *testing.T) {
	longLine := strings.Repeat("x", 120)
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="user on TikTok" />
	<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">
	{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{"desc":"`+longLine+`\nsecond line ignored"}}}}}
	</script>
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseTikTok(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseTikTok: %v", err)
	}
	if !rec.RawSuccess {
		t.Fatalf("expected success, got %q", rec.Error)
	}
	// The title comes from the caption's first line only, capped at
	// 100 runes.
	if strings.Contains(rec.Title, "second line") {
		t.Errorf("Title = %q, must not include later caption lines", rec.Title)
	}
	if n := len([]rune(rec.Title)); n != 100 {
		t.Errorf("Title rune length = %d, want cap at 100", n)
	}
}

func TestParseInstagramLocationFromDescriptionOnly(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="maria on Instagram: &quot;dinner at Maria&#39;s. great&quot;" />
	<meta property="og:description" content="Tasty evening with friends" />
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseInstagram(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseInstagram: %v", err)
	}
	if !rec.RawSuccess {
		t.Fatalf("expected success, got %q", rec.Error)
	}
	// An "at <place>." phrase in the caption title is not a location
	// hint; only the description is searched.
	if rec.LocationName != "" {
		t.Errorf("LocationName = %q, want empty", rec.LocationName)
	}

	srv2 := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="maria on Instagram: &quot;great night&quot;" />
	<meta property="og:description" content="Live jazz at Blue Note. Come early" />
</head><body></body></html>`)

	rec, err = p.parseInstagram(context.Background(), srv2.URL)
	if err != nil {
		t.Fatalf("parseInstagram: %v", err)
	}
	if rec.LocationName != "Blue Note" {
		t.Errorf("LocationName = %q, want %q", rec.LocationName, "Blue Note")
	}
}

func TestParseYouTube(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Fallback Title - YouTube" />
</head><body>
	<script>var ytInitialPlayerResponse = {"videoDetails":{"title":"Top 10 Restaurants in Rome","shortDescription":"Eating across the city"}};</script>
</body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseYouTube(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseYouTube: %v", err)
	}
	if rec.Title != "Top 10 Restaurants in Rome" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Description != "Eating across the city" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Category != models.CategoryRestaurant {
		t.Errorf("Category = %q", rec.Category)
	}
}

func TestParseReddit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/food/comments/abc.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"data":{"children":[{"data":{"title":"Best tacos in Austin?","selftext":"Looking for dinner recommendations"}}]}}]`))
	}))
	defer srv.Close()

	p := New(DefaultConfig(), nil)
	rec, err := p.parseReddit(context.Background(), srv.URL+"/r/food/comments/abc/")
	if err != nil {
		t.Fatalf("parseReddit: %v", err)
	}
	if rec.Title != "Best tacos in Austin?" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Description != "Looking for dinner recommendations" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.SourceKind != models.SourceReddit {
		t.Errorf("SourceKind = %q", rec.SourceKind)
	}
	if rec.Category != models.CategoryRestaurant {
		t.Errorf("Category = %q, want restaurant from dinner keyword", rec.Category)
	}
}

func TestParseAirbnb(t *testing.T) {
	srv := htmlServer(t, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Cozy Loft in Williamsburg - Airbnb" />
	<meta property="og:description" content="Bright loft near the waterfront" />
</head><body></body></html>`)

	p := New(DefaultConfig(), nil)
	rec, err := p.parseAirbnb(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("parseAirbnb: %v", err)
	}
	if rec.Category != models.CategoryTrip {
		t.Errorf("Category = %q, want trip", rec.Category)
	}
	if rec.LocationName != "Williamsburg" {
		t.Errorf("LocationName = %q", rec.LocationName)
	}
}
