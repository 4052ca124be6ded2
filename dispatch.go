package scout

import (
	"context"
	"net/url"
	"strings"

	"github.com/driftlabs/scout/models"
)

// adapterFunc is one platform's extraction strategy. A non-nil error
// tells the dispatcher to fall back to the generic adapter; recoverable
// conditions (soft success, partial data) are expressed in the record
// instead.
type adapterFunc func(ctx context.Context, pageURL string) (models.CandidateRecord, error)

// rule pairs a URL predicate with its adapter. Rules are evaluated in
// order and the first match wins; ordering matters because some
// patterns are substrings of others (google.com/maps vs google.com).
type rule struct {
	name  string
	match func(lowerURL, host string) bool
	parse adapterFunc
}

func hostContains(fragments ...string) func(string, string) bool {
	return func(_, host string) bool {
		for _, f := range fragments {
			if strings.Contains(host, f) {
				return true
			}
		}
		return false
	}
}

func (p *Parser) dispatchRules() []rule {
	return []rule{
		{
			name: "google_maps",
			match: func(lowerURL, _ string) bool {
				return strings.Contains(lowerURL, "google.com/maps") ||
					strings.Contains(lowerURL, "goo.gl/maps") ||
					strings.Contains(lowerURL, "maps.app.goo.gl")
			},
			parse: p.parseGoogleMaps,
		},
		{name: "tiktok", match: hostContains("tiktok.com"), parse: p.parseTikTok},
		{name: "instagram", match: hostContains("instagram.com"), parse: p.parseInstagram},
		{name: "facebook", match: hostContains("facebook.com", "fb.watch"), parse: p.socialAdapter("Facebook")},
		{name: "youtube", match: hostContains("youtube.com", "youtu.be"), parse: p.parseYouTube},
		{name: "yelp", match: hostContains("yelp.com"), parse: p.parseYelp},
		{name: "opentable", match: hostContains("opentable.com"), parse: p.restaurantPlatformAdapter("OpenTable")},
		{name: "resy", match: hostContains("resy.com"), parse: p.restaurantPlatformAdapter("Resy")},
		{name: "tripadvisor", match: hostContains("tripadvisor.com"), parse: p.parseTripAdvisor},
		{name: "eventbrite", match: hostContains("eventbrite.com"), parse: p.parseEventbrite},
		{name: "airbnb", match: hostContains("airbnb.com"), parse: p.parseAirbnb},
		{name: "reddit", match: hostContains("reddit.com"), parse: p.parseReddit},
	}
}

// normalizeURL trims the input and prefixes https:// when no scheme is
// present.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// dispatch routes the URL to the first matching adapter, falling back
// to the generic adapter on any adapter error. A second-level failure
// (generic also errors) becomes a failure record.
func (p *Parser) dispatch(ctx context.Context, rawURL string) models.CandidateRecord {
	pageURL := normalizeURL(rawURL)
	if pageURL == "" {
		return failure(models.SourceGenericURL, "no URL provided")
	}

	lowerURL := strings.ToLower(pageURL)
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	for _, r := range p.rules {
		if !r.match(lowerURL, host) {
			continue
		}
		rec, err := r.parse(ctx, pageURL)
		if err == nil {
			return rec
		}
		break // adapter failed, try the generic fallback
	}

	rec, err := p.parseGeneric(ctx, pageURL)
	if err != nil {
		return failure(models.SourceGenericURL, err.Error())
	}
	return rec
}

// adapterFor reports which rule would handle the URL; empty means the
// generic adapter.
func (p *Parser) adapterFor(rawURL string) string {
	pageURL := normalizeURL(rawURL)
	lowerURL := strings.ToLower(pageURL)
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	for _, r := range p.rules {
		if r.match(lowerURL, host) {
			return r.name
		}
	}
	return ""
}
