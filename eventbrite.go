package scout

import (
	"context"

	"github.com/driftlabs/scout/models"
)

// parseEventbrite reads an event page. Eventbrite embeds a full
// schema.org Event entity, so JSON-LD carries the venue and
// coordinates; Open Graph fills in whatever it omits.
func (p *Parser) parseEventbrite(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	rec := models.CandidateRecord{
		Title:       truncateTitle(stripSuffix(meta.Title, " | Eventbrite")),
		Description: truncateDescription(meta.Description),
		Category:    models.CategoryEvent,
		ImageURL:    meta.Image,
		SourceKind:  models.SourceEventbrite,
	}

	for _, item := range extractJSONLD(doc) {
		if ldType(item) != "Event" {
			continue
		}
		if name := ldString(item, "name"); name != "" {
			rec.Title = truncateTitle(name)
		}
		if desc := ldString(item, "description"); desc != "" {
			rec.Description = truncateDescription(desc)
		}
		if loc, ok := item["location"].(map[string]any); ok {
			venue := ldString(loc, "name")
			addr := ldAddress(loc["address"])
			switch {
			case venue != "" && addr != "":
				rec.LocationName = venue
				rec.Address = venue + ", " + addr
			case venue != "":
				rec.LocationName = venue
			case addr != "":
				rec.Address = addr
			}
			if geo := ldGeo(loc); geo != nil {
				rec.Coordinates = geo
			}
		}
		break
	}

	rec.RawSuccess = true
	return rec, nil
}
