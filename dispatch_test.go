package scout

import (
	"context"
	"testing"
	"time"

	"github.com/driftlabs/scout/models"
)

func TestAdapterFor(t *testing.T) {
	p := New(DefaultConfig(), nil)

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.google.com/maps/place/Central+Park/", "google_maps"},
		{"https://goo.gl/maps/abc123", "google_maps"},
		{"https://maps.app.goo.gl/xyz", "google_maps"},
		{"https://www.tiktok.com/@user/video/123", "tiktok"},
		{"https://www.instagram.com/p/abc/", "instagram"},
		{"https://www.facebook.com/events/123", "facebook"},
		{"https://fb.watch/abc/", "facebook"},
		{"https://www.youtube.com/watch?v=abc", "youtube"},
		{"https://youtu.be/abc", "youtube"},
		{"https://www.yelp.com/biz/lucali-brooklyn", "yelp"},
		{"https://www.opentable.com/r/some-restaurant", "opentable"},
		{"https://resy.com/cities/ny/some-restaurant", "resy"},
		{"https://www.tripadvisor.com/Restaurant_Review-x", "tripadvisor"},
		{"https://www.eventbrite.com/e/some-event-123", "eventbrite"},
		{"https://www.airbnb.com/rooms/123", "airbnb"},
		{"https://www.reddit.com/r/travel/comments/abc/", "reddit"},
		{"https://example.com/some-page", ""},
		{"example.com/no-scheme", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := p.adapterFor(tt.url); got != tt.want {
				t.Errorf("adapterFor(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestAdapterForHostMatching(t *testing.T) {
	p := New(DefaultConfig(), nil)

	// A non-Maps Google URL must not hit the Maps adapter.
	if got := p.adapterFor("https://www.google.com/search?q=pizza"); got != "" {
		t.Errorf("google search routed to %q, want generic", got)
	}
	// Platform names in the path must not trigger host rules.
	if got := p.adapterFor("https://example.com/yelp.com-review"); got != "" {
		t.Errorf("path mention routed to %q, want generic", got)
	}
}

func TestResolveEmptyURL(t *testing.T) {
	p := New(DefaultConfig(), nil)

	rec := p.Resolve(context.Background(), "   ")
	if rec.RawSuccess {
		t.Fatal("empty URL must produce a failure record")
	}
	if rec.Error == "" {
		t.Error("failure record must carry an error")
	}
	if rec.Title != "" || rec.Description != "" {
		t.Error("failure record must not carry content fields")
	}
}

func TestResolveUnreachableURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPTimeout = 2 * time.Second
	p := New(cfg, nil)

	// Nothing listens here; the generic fallback fails and the result
	// is a failure record, never a panic or an error return.
	rec := p.Resolve(context.Background(), "http://127.0.0.1:1/nope")
	if rec.RawSuccess {
		t.Fatal("unreachable URL must produce a failure record")
	}
	if rec.SourceKind != models.SourceGenericURL {
		t.Errorf("SourceKind = %q, want %q", rec.SourceKind, models.SourceGenericURL)
	}
	if rec.Error == "" {
		t.Error("failure record must carry an error")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  https://example.com  ", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
