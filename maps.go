package scout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/driftlabs/scout/models"
)

const placesSearchTextURL = "https://places.googleapis.com/v1/places:searchText"

var (
	placePathRe = regexp.MustCompile(`/place/([^/@]+)`)
	coordsRe    = regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`)
)

// placeNameFromURL pulls the place-name hint out of a Maps URL path
// segment (/place/<name>/).
func placeNameFromURL(pageURL string) string {
	unescaped, err := url.QueryUnescape(pageURL)
	if err != nil {
		unescaped = pageURL
	}
	m := placePathRe.FindStringSubmatch(unescaped)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "+", " ")
}

// coordsFromURL pulls coordinates from the @lat,lng URL segment.
func coordsFromURL(pageURL string) *models.Coordinates {
	m := coordsRe.FindStringSubmatch(pageURL)
	if m == nil {
		return nil
	}
	var lat, lng float64
	if _, err := fmt.Sscanf(m[1], "%f", &lat); err != nil {
		return nil
	}
	if _, err := fmt.Sscanf(m[2], "%f", &lng); err != nil {
		return nil
	}
	return &models.Coordinates{Lat: lat, Lng: lng}
}

// parseGoogleMaps resolves a Maps URL. URL-derived hints come first;
// the page is fetched only when the URL carries no hints (shortlinks
// redirect to a hint-bearing URL). With a Places API key configured,
// a text-search query seeded by the hints resolves the canonical
// place and supersedes them.
func (p *Parser) parseGoogleMaps(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	title := placeNameFromURL(pageURL)
	coords := coordsFromURL(pageURL)

	if title == "" && coords == nil {
		// Likely a goo.gl/maps shortlink; follow redirects to the
		// full URL and retry the hints.
		if _, _, finalURL, err := p.fetchPage(ctx, pageURL); err == nil {
			title = placeNameFromURL(finalURL)
			coords = coordsFromURL(finalURL)
		}
	}

	if p.config.PlacesAPIKey != "" && title != "" {
		if rec, err := p.placesSearchText(ctx, title, coords); err == nil {
			return rec, nil
		}
		// Places lookup failed; fall through to the URL-derived hint.
	}

	if title == "" && coords == nil {
		return failure(models.SourceGoogleMaps, "could not extract place from Maps URL"), nil
	}

	return models.CandidateRecord{
		Title:       truncateTitle(title),
		Coordinates: coords,
		Category:    InferCategory(title),
		SourceKind:  models.SourceGoogleMaps,
		RawSuccess:  true,
	}, nil
}

type placesTextQuery struct {
	TextQuery    string `json:"textQuery"`
	LocationBias *struct {
		Circle struct {
			Center struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationBias,omitempty"`
}

type placesTextResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	} `json:"places"`
}

// placesSearchText resolves a place name (optionally biased around a
// coordinate) through the Places text-search API.
func (p *Parser) placesSearchText(ctx context.Context, query string, bias *models.Coordinates) (models.CandidateRecord, error) {
	body := placesTextQuery{TextQuery: query}
	if bias != nil {
		body.LocationBias = &struct {
			Circle struct {
				Center struct {
					Latitude  float64 `json:"latitude"`
					Longitude float64 `json:"longitude"`
				} `json:"center"`
				Radius float64 `json:"radius"`
			} `json:"circle"`
		}{}
		body.LocationBias.Circle.Center.Latitude = bias.Lat
		body.LocationBias.Circle.Center.Longitude = bias.Lng
		body.LocationBias.Circle.Radius = 500
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to marshal places query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, placesSearchTextURL, bytes.NewReader(payload))
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to create places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", p.config.PlacesAPIKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.displayName,places.formattedAddress,places.location")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed placesTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to decode places response: %w", err)
	}
	if len(parsed.Places) == 0 {
		return models.CandidateRecord{}, fmt.Errorf("no result from Places API")
	}

	place := parsed.Places[0]
	title := place.DisplayName.Text
	if title == "" {
		title = query
	}

	return models.CandidateRecord{
		Title:        truncateTitle(title),
		Address:      place.FormattedAddress,
		LocationName: place.FormattedAddress,
		Coordinates:  &models.Coordinates{Lat: place.Location.Latitude, Lng: place.Location.Longitude},
		Category:     InferCategory(title),
		SourceKind:   models.SourceGoogleMaps,
		RawSuccess:   true,
	}, nil
}
