package scout

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/driftlabs/scout/models"
)

var ytPlayerResponseRe = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*(\{.+?\});`)

// parseYouTube reads the video title and description out of the
// embedded player response, with Open Graph tags as the fallback.
func (p *Parser) parseYouTube(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, body, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return models.CandidateRecord{}, err
	}

	meta := extractMeta(doc)
	title := stripSuffix(meta.Title, " - YouTube")
	desc := meta.Description

	if m := ytPlayerResponseRe.FindStringSubmatch(body); m != nil {
		var player struct {
			VideoDetails struct {
				Title            string `json:"title"`
				ShortDescription string `json:"shortDescription"`
			} `json:"videoDetails"`
		}
		if err := json.Unmarshal([]byte(m[1]), &player); err == nil {
			if player.VideoDetails.Title != "" {
				title = player.VideoDetails.Title
			}
			if player.VideoDetails.ShortDescription != "" {
				desc = player.VideoDetails.ShortDescription
			}
		}
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return failure(models.SourceGenericURL, "could not extract video details"), nil
	}

	return models.CandidateRecord{
		Title:       truncateTitle(title),
		Description: truncateDescription(desc),
		Category:    inferOrEmpty(title + " " + desc),
		ImageURL:    meta.Image,
		SourceKind:  models.SourceGenericURL,
		RawSuccess:  true,
	}, nil
}
