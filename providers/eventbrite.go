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

const eventbriteBaseURL = "https://www.eventbriteapi.com/v3"

const maxEventDescriptionLen = 300

// Eventbrite is an Eventbrite API client for event search.
type Eventbrite struct {
	token   string
	baseURL string
	client  *http.Client
	cache   cache.Store
	now     func() time.Time
}

// EventbriteConfig contains Eventbrite client configuration.
type EventbriteConfig struct {
	Token   string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// NewEventbrite creates an Eventbrite client. store can be nil to
// disable caching.
func NewEventbrite(cfg EventbriteConfig, store cache.Store) *Eventbrite {
	if cfg.BaseURL == "" {
		cfg.BaseURL = eventbriteBaseURL
	}
	return &Eventbrite{
		token:   cfg.Token,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newHTTPClient(cfg.Timeout),
		cache:   store,
		now:     time.Now,
	}
}

// Enabled reports whether the client has credentials.
func (e *Eventbrite) Enabled() bool { return e.token != "" }

// EventQuery describes an event search. Zero StartDate means "now"
// with a seven day window.
type EventQuery struct {
	Location  string
	Query     string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

type eventbriteResponse struct {
	Events []struct {
		Name struct {
			Text string `json:"text"`
		} `json:"name"`
		Description struct {
			Text string `json:"text"`
		} `json:"description"`
		Start struct {
			Local string `json:"local"`
		} `json:"start"`
		End struct {
			Local string `json:"local"`
		} `json:"end"`
		IsFree bool   `json:"is_free"`
		URL    string `json:"url"`
		Logo   *struct {
			URL string `json:"url"`
		} `json:"logo"`
		Venue *struct {
			Name    string `json:"name"`
			Address struct {
				LocalizedAddressDisplay string `json:"localized_address_display"`
			} `json:"address"`
		} `json:"venue"`
		Organizer *struct {
			Name string `json:"name"`
		} `json:"organizer"`
		Category *struct {
			Name string `json:"name"`
		} `json:"category"`
	} `json:"events"`
}

// SearchEvents searches upcoming events around a location.
func (e *Eventbrite) SearchEvents(ctx context.Context, q EventQuery) ([]models.ScoredItem, error) {
	if !e.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	if q.StartDate.IsZero() {
		q.StartDate = e.now()
	}
	if q.EndDate.IsZero() {
		q.EndDate = q.StartDate.Add(7 * 24 * time.Hour)
	}

	start := q.StartDate.UTC().Format("2006-01-02T15:04:05Z")
	end := q.EndDate.UTC().Format("2006-01-02T15:04:05Z")

	key := fmt.Sprintf("eventbrite:%s:%s:%s:%d", q.Location, q.Query, start, q.Limit)
	if items, ok := cached[[]models.ScoredItem](e.cache, "eventbrite", key); ok {
		return items, nil
	}

	params := url.Values{}
	params.Set("expand", "venue,organizer")
	params.Set("start_date.range_start", start)
	params.Set("start_date.range_end", end)
	params.Set("page_size", strconv.Itoa(q.Limit))
	params.Set("price", "free,paid")
	if q.Location != "" {
		params.Set("location.address", q.Location)
	}
	if q.Query != "" {
		params.Set("q", q.Query)
	}

	var resp eventbriteResponse
	reqURL := e.baseURL + "/events/search/?" + params.Encode()
	headers := map[string]string{"Authorization": "Bearer " + e.token}
	if err := getJSON(ctx, e.client, "eventbrite", reqURL, headers, &resp); err != nil {
		return nil, err
	}

	items := make([]models.ScoredItem, 0, len(resp.Events))
	for _, ev := range resp.Events {
		// Cut on a rune boundary so multibyte text stays valid UTF-8.
		desc := ev.Description.Text
		if r := []rune(desc); len(r) > maxEventDescriptionLen {
			desc = string(r[:maxEventDescriptionLen])
		}

		item := models.ScoredItem{
			Source:      "eventbrite",
			Kind:        "event",
			Name:        ev.Name.Text,
			Description: desc,
			StartTime:   ev.Start.Local,
			EndTime:     ev.End.Local,
			IsFree:      ev.IsFree,
			URL:         ev.URL,
			VenueName:   "Online",
		}
		if ev.Logo != nil {
			item.ImageURL = ev.Logo.URL
		}
		if ev.Venue != nil {
			if ev.Venue.Name != "" {
				item.VenueName = ev.Venue.Name
			}
			item.Address = ev.Venue.Address.LocalizedAddressDisplay
		}
		if ev.Organizer != nil {
			item.Organizer = ev.Organizer.Name
		}
		if ev.Category != nil {
			item.Category = ev.Category.Name
		}
		items = append(items, item)
	}

	store(e.cache, key, items, searchTTL)
	return items, nil
}
