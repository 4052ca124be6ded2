package scout

import (
	"context"
	"errors"

	"github.com/driftlabs/scout/models"
)

// errNoTitle signals that a platform adapter extracted nothing useful
// and the dispatcher should retry with the generic adapter.
var errNoTitle = errors.New("no title found")

// businessTypeCategories maps JSON-LD business types onto the
// taxonomy. Anything food-adjacent without a closer match defaults to
// restaurant.
var businessTypeCategories = map[string]models.Category{
	"Restaurant":       models.CategoryRestaurant,
	"BarOrPub":         models.CategoryBar,
	"CafeOrCoffeeShop": models.CategoryCafe,
}

// parseGeneric is the last-resort adapter for URLs no platform rule
// claims. It layers JSON-LD entities over Open Graph metadata, taking
// the most specific entity available: business first, then event,
// then lodging, then a bare Place.
func (p *Parser) parseGeneric(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	rec := models.CandidateRecord{
		Title:       truncateTitle(meta.Title),
		Description: truncateDescription(meta.Description),
		ImageURL:    meta.Image,
		SourceKind:  models.SourceGenericURL,
	}

	var category models.Category
	entities := extractJSONLD(doc)

	apply := func(item map[string]any) {
		if name := ldString(item, "name"); name != "" {
			rec.Title = truncateTitle(name)
		}
		if desc := ldString(item, "description"); desc != "" {
			rec.Description = truncateDescription(desc)
		}
		if addr := ldAddress(item["address"]); addr != "" {
			rec.Address = addr
		}
		if geo := ldGeo(item); geo != nil {
			rec.Coordinates = geo
		}
	}

	pickEntity := func(types ...string) (map[string]any, string) {
		for _, item := range entities {
			t := ldType(item)
			for _, want := range types {
				if t == want {
					return item, t
				}
			}
		}
		return nil, ""
	}

	if item, t := pickEntity("Restaurant", "LocalBusiness", "FoodEstablishment", "BarOrPub", "CafeOrCoffeeShop"); item != nil {
		apply(item)
		if c, ok := businessTypeCategories[t]; ok {
			category = c
		} else {
			category = models.CategoryRestaurant
		}
	} else if item, _ := pickEntity("Event"); item != nil {
		apply(item)
		if loc, ok := item["location"].(map[string]any); ok {
			if venue := ldString(loc, "name"); venue != "" {
				rec.LocationName = venue
			} else if addr := ldAddress(loc["address"]); addr != "" {
				rec.Address = addr
			}
			if geo := ldGeo(loc); geo != nil {
				rec.Coordinates = geo
			}
		}
		category = models.CategoryEvent
	} else if item, _ := pickEntity("Hotel", "LodgingBusiness"); item != nil {
		apply(item)
		category = models.CategoryTrip
	} else if item, _ := pickEntity("Place"); item != nil {
		apply(item)
	}

	if rec.Title == "" {
		return failure(models.SourceGenericURL, "Could not extract details from URL"), nil
	}

	if category == "" {
		category = InferCategory(rec.Title + " " + rec.Description)
	}
	rec.Category = category
	rec.RawSuccess = true
	return rec, nil
}
