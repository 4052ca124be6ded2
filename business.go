package scout

import (
	"context"
	"strings"

	"github.com/driftlabs/scout/models"
)

// parseYelp reads a Yelp business page: Open Graph tags for the text
// fields, JSON-LD for the structured address and coordinates.
func (p *Parser) parseYelp(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	rec := models.CandidateRecord{
		Title:       truncateTitle(stripSuffix(meta.Title, " - Yelp")),
		Description: truncateDescription(meta.Description),
		ImageURL:    meta.Image,
		SourceKind:  models.SourceYelp,
	}

	for _, item := range extractJSONLD(doc) {
		switch ldType(item) {
		case "Restaurant", "LocalBusiness", "FoodEstablishment", "BarOrPub":
			if name := ldString(item, "name"); name != "" {
				rec.Title = truncateTitle(name)
			}
			if addr := ldAddress(item["address"]); addr != "" {
				rec.Address = addr
			}
			if geo := ldGeo(item); geo != nil {
				rec.Coordinates = geo
			}
		}
	}

	if rec.Title == "" {
		return models.CandidateRecord{}, errNoTitle
	}

	rec.Category = InferCategory(rec.Title + " " + rec.Description)
	if rec.Category == models.CategoryOther {
		rec.Category = models.CategoryRestaurant
	}
	rec.RawSuccess = true
	return rec, nil
}

// restaurantPlatformAdapter covers reservation platforms (OpenTable,
// Resy) whose pages are always restaurants.
func (p *Parser) restaurantPlatformAdapter(platform string) adapterFunc {
	suffix := " | " + platform
	return func(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
		doc, _, _, err := p.fetchPage(ctx, pageURL)
		if err != nil {
			return models.CandidateRecord{}, err
		}

		meta := extractMeta(doc)
		rec := models.CandidateRecord{
			Title:       truncateTitle(stripSuffix(meta.Title, suffix)),
			Description: truncateDescription(meta.Description),
			Category:    models.CategoryRestaurant,
			ImageURL:    meta.Image,
			SourceKind:  models.SourceGenericURL,
		}

		for _, item := range extractJSONLD(doc) {
			switch ldType(item) {
			case "Restaurant", "LocalBusiness":
				if name := ldString(item, "name"); name != "" {
					rec.Title = truncateTitle(name)
				}
				if addr := ldAddress(item["address"]); addr != "" {
					rec.Address = addr
				}
				if geo := ldGeo(item); geo != nil {
					rec.Coordinates = geo
				}
			}
		}

		if rec.Title == "" {
			return models.CandidateRecord{}, errNoTitle
		}
		rec.RawSuccess = true
		return rec, nil
	}
}

// parseTripAdvisor maps the JSON-LD entity type onto the taxonomy:
// restaurants, hotels and attractions all live on one domain.
func (p *Parser) parseTripAdvisor(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	title := meta.Title
	// Titles look like "Name - City - Tripadvisor"; the first segment
	// is the entity name.
	if idx := strings.Index(title, " - "); idx > 0 {
		title = title[:idx]
	}

	rec := models.CandidateRecord{
		Title:       truncateTitle(strings.TrimSpace(title)),
		Description: truncateDescription(meta.Description),
		ImageURL:    meta.Image,
		SourceKind:  models.SourceGenericURL,
	}

	var category models.Category
	for _, item := range extractJSONLD(doc) {
		switch ldType(item) {
		case "Restaurant":
			category = models.CategoryRestaurant
		case "Hotel":
			category = models.CategoryTrip
		case "LocalBusiness", "TouristAttraction":
			if category == "" {
				category = models.CategoryActivity
			}
		default:
			continue
		}
		if name := ldString(item, "name"); name != "" {
			rec.Title = truncateTitle(name)
		}
		if addr := ldAddress(item["address"]); addr != "" {
			rec.Address = addr
		}
		if geo := ldGeo(item); geo != nil {
			rec.Coordinates = geo
		}
	}

	if rec.Title == "" {
		return models.CandidateRecord{}, errNoTitle
	}

	if category == "" {
		category = InferCategory(rec.Title + " " + rec.Description)
	}
	rec.Category = category
	rec.RawSuccess = true
	return rec, nil
}

// parseAirbnb reads a listing page. The "<name> in <location>" title
// convention yields a location hint without structured data.
func (p *Parser) parseAirbnb(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	title := stripSuffix(meta.Title, " - Airbnb")

	var location string
	if idx := strings.LastIndex(title, " in "); idx > 0 {
		location = strings.TrimSpace(title[idx+len(" in "):])
	}

	if title == "" {
		return models.CandidateRecord{}, errNoTitle
	}

	return models.CandidateRecord{
		Title:        truncateTitle(title),
		Description:  truncateDescription(meta.Description),
		Category:     models.CategoryTrip,
		LocationName: location,
		ImageURL:     meta.Image,
		SourceKind:   models.SourceGenericURL,
		RawSuccess:   true,
	}, nil
}
