package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/driftlabs/scout/models"
)

// parseReddit uses Reddit's JSON mirror of every post URL instead of
// scraping the HTML.
func (p *Parser) parseReddit(ctx context.Context, pageURL string) (models.CandidateRecord, error) {
	jsonURL := strings.TrimRight(pageURL, "/") + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "drift-scout/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to fetch reddit post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CandidateRecord{}, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var listings []struct {
		Data struct {
			Children []struct {
				Data struct {
					Title    string `json:"title"`
					Selftext string `json:"selftext"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return models.CandidateRecord{}, fmt.Errorf("failed to decode reddit response: %w", err)
	}

	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return models.CandidateRecord{}, fmt.Errorf("empty reddit listing")
	}

	post := listings[0].Data.Children[0].Data
	if post.Title == "" {
		return models.CandidateRecord{}, fmt.Errorf("reddit post has no title")
	}

	return models.CandidateRecord{
		Title:       truncateTitle(post.Title),
		Description: truncateDescription(post.Selftext),
		Category:    inferOrEmpty(post.Title + " " + post.Selftext),
		SourceKind:  models.SourceReddit,
		RawSuccess:  true,
	}, nil
}
