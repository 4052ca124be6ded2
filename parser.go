// Package scout extracts structured place/event records from URLs.
//
// A Parser inspects a URL, routes it to the adapter for the matching
// platform (Google Maps, TikTok, Instagram, Yelp, Eventbrite, Reddit
// and friends) and falls back to generic Open Graph / JSON-LD
// extraction when no adapter matches or the matched adapter fails.
// Resolve never returns an error: every failure path terminates in a
// CandidateRecord describing what went wrong.
package scout

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/driftlabs/scout/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SnapshotStore archives raw fetched payloads. Implemented by the
// storage package; nil disables archiving.
type SnapshotStore interface {
	SaveSnapshot(content, slug string) (string, error)
}

// Config contains parser configuration.
type Config struct {
	HTTPTimeout  time.Duration
	PlacesAPIKey string // Google Places key for canonical Maps resolution
	UserAgent    string
}

// DefaultConfig returns default parser configuration.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout: 15 * time.Second,
		UserAgent:   defaultUserAgent,
	}
}

// Parser resolves URLs into CandidateRecords.
type Parser struct {
	config     Config
	httpClient *http.Client
	archive    SnapshotStore
	rules      []rule
}

// New creates a new Parser. archive can be nil if snapshot archiving
// is not needed.
func New(config Config, archive SnapshotStore) *Parser {
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = 15 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	p := &Parser{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		archive: archive,
	}
	p.rules = p.dispatchRules()
	return p
}

// Resolve parses a URL into a CandidateRecord. It never returns an
// error; unrecoverable failures produce a record with RawSuccess false
// and Error set.
func (p *Parser) Resolve(ctx context.Context, rawURL string) models.CandidateRecord {
	ctx, span := otel.Tracer("scout").Start(ctx, "parser.resolve")
	defer span.End()

	rec := p.dispatch(ctx, rawURL)
	span.SetAttributes(
		attribute.String("scout.source_kind", string(rec.SourceKind)),
		attribute.Bool("scout.raw_success", rec.RawSuccess),
	)
	return rec
}

// failure builds the only record shape allowed to carry RawSuccess
// false: source kind and error, nothing else.
func failure(kind models.SourceKind, msg string) models.CandidateRecord {
	return models.CandidateRecord{
		SourceKind: kind,
		RawSuccess: false,
		Error:      msg,
	}
}

// softSuccess marks content the platform blocked from scraping: the
// caller should proceed and let the user fill in details manually.
func softSuccess(kind models.SourceKind, platform string) models.CandidateRecord {
	return models.CandidateRecord{
		SourceKind: kind,
		RawSuccess: true,
		Error:      platform + " content detected. Please add details manually.",
	}
}
