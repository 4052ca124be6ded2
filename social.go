package scout

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/driftlabs/scout/models"
)

// maxCaptionTitleRunes caps titles derived from a caption's first line.
const maxCaptionTitleRunes = 100

var (
	tiktokSuffixRe   = regexp.MustCompile(`\s*\|\s*TikTok.*$`)
	tiktokAuthorRe   = regexp.MustCompile(`^.+?\s+on\s+TikTok\s*`)
	instaCaptionRe   = regexp.MustCompile(`on Instagram:\s*["'“](.+?)["'”]`)
	instaLocationRe  = regexp.MustCompile(`\bat\s+([^.]+?)\.`)
	universalDataKey = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
	sigiStateKey     = "SIGI_STATE"
)

// parseTikTok extracts video metadata from TikTok's embedded hydration
// state. TikTok pages resist scraping aggressively, so any failure
// degrades to a soft success asking for manual details rather than
// falling through to the generic adapter.
func (p *Parser) parseTikTok(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return softSuccess(models.SourceTikTok, "TikTok"), nil
	}

	meta := extractMeta(doc)
	title := tiktokSuffixRe.ReplaceAllString(meta.Title, "")
	title = strings.TrimSpace(tiktokAuthorRe.ReplaceAllString(title, ""))

	desc, tags := tiktokHydrationState(doc)
	if desc == "" {
		desc = meta.Description
	}
	if title == "" && desc != "" {
		// Derive a title from the caption's first line.
		title, _, _ = strings.Cut(desc, "\n")
		title = truncateRunes(title, maxCaptionTitleRunes)
	}

	if title == "" && desc == "" {
		return softSuccess(models.SourceTikTok, "TikTok"), nil
	}

	return models.CandidateRecord{
		Title:       truncateTitle(title),
		Description: truncateDescription(desc),
		Category:    InferCategory(title + " " + desc + " " + strings.Join(tags, " ")),
		ImageURL:    meta.Image,
		SourceKind:  models.SourceTikTok,
		RawSuccess:  true,
	}, nil
}

// tiktokHydrationState digs the video description and hashtag titles
// out of the page's embedded JSON state. Two generations of the state
// layout are checked; either may be absent.
func tiktokHydrationState(doc *html.Node) (string, []string) {
	for _, block := range scriptContents(doc, func(attrs map[string]string) bool {
		return attrs["id"] == universalDataKey
	}) {
		var state struct {
			DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
		}
		if err := json.Unmarshal([]byte(block), &state); err != nil {
			continue
		}
		raw, ok := state.DefaultScope["webapp.video-detail"]
		if !ok {
			continue
		}
		var detail struct {
			ItemInfo struct {
				ItemStruct struct {
					Desc       string `json:"desc"`
					Challenges []struct {
						Title string `json:"title"`
					} `json:"challenges"`
				} `json:"itemStruct"`
			} `json:"itemInfo"`
		}
		if err := json.Unmarshal(raw, &detail); err != nil {
			continue
		}
		item := detail.ItemInfo.ItemStruct
		if item.Desc != "" {
			tags := make([]string, 0, len(item.Challenges))
			for _, c := range item.Challenges {
				if c.Title != "" {
					tags = append(tags, c.Title)
				}
			}
			return item.Desc, tags
		}
	}

	for _, block := range scriptContents(doc, func(attrs map[string]string) bool {
		return attrs["id"] == sigiStateKey
	}) {
		var state struct {
			ItemModule map[string]struct {
				Desc string `json:"desc"`
			} `json:"ItemModule"`
		}
		if err := json.Unmarshal([]byte(block), &state); err != nil {
			continue
		}
		for _, item := range state.ItemModule {
			if item.Desc != "" {
				return item.Desc, nil
			}
		}
	}

	return "", nil
}

// parseInstagram pulls the caption out of Instagram's og:title, which
// renders as `<author> on Instagram: "<caption>"`. A trailing
// "at <place>." phrase in the caption doubles as a location hint.
func (p *Parser) parseInstagram(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	doc, _, _, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return softSuccess(models.SourceInstagram, "Instagram"), nil
	}

	meta := extractMeta(doc)
	title := meta.Title
	desc := meta.Description

	if m := instaCaptionRe.FindStringSubmatch(meta.Title); m != nil {
		caption := strings.TrimSpace(m[1])
		if caption != "" {
			title = caption
			if desc == "" {
				desc = caption
			}
		}
	}

	// The location hint lives in the description only; captions that
	// merely mention "at <place>." in their title carry no hint.
	var location string
	if m := instaLocationRe.FindStringSubmatch(desc); m != nil {
		location = strings.TrimSpace(m[1])
	}

	if title == "" {
		return softSuccess(models.SourceInstagram, "Instagram"), nil
	}

	return models.CandidateRecord{
		Title:        truncateTitle(title),
		Description:  truncateDescription(desc),
		LocationName: location,
		Category:     InferCategory(title + " " + desc),
		ImageURL:     meta.Image,
		SourceKind:   models.SourceInstagram,
		RawSuccess:   true,
	}, nil
}

// socialAdapter handles platforms like Facebook where pages for venues
// and events carry usable Open Graph and JSON-LD data but feed posts
// do not. Missing data degrades to a soft success.
func (p *Parser) socialAdapter(platform string) adapterFunc {
	return func(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
		doc, _, _, err := p.fetchPage(ctx, pageURL)
		if err != nil {
			return softSuccess(models.SourceGenericURL, platform), nil
		}

		meta := extractMeta(doc)
		rec := models.CandidateRecord{
			Title:       truncateTitle(meta.Title),
			Description: truncateDescription(meta.Description),
			ImageURL:    meta.Image,
			SourceKind:  models.SourceGenericURL,
		}

		for _, item := range extractJSONLD(doc) {
			switch ldType(item) {
			case "Restaurant", "LocalBusiness", "Place", "Event":
				if name := ldString(item, "name"); name != "" && rec.Title == "" {
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
			return softSuccess(models.SourceGenericURL, platform), nil
		}

		rec.Category = InferCategory(rec.Title + " " + rec.Description)
		rec.RawSuccess = true
		return rec, nil
	}
}
