package scout

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/driftlabs/scout/slug"
)

const maxPageBytes = 5 * 1024 * 1024

// fetchPage fetches a URL with browser-like headers and parses the
// body as HTML. It returns the parsed document, the raw body and the
// final URL after redirects.
func (p *Parser) fetchPage(ctx context.Context, pageURL string) (*html.Node, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	p.archivePage(string(body), finalURL)

	return doc, string(body), finalURL, nil
}

// archivePage stores the raw payload when an archive is configured.
// Best effort: archive failures are logged and ignored.
func (p *Parser) archivePage(content, pageURL string) {
	if p.archive == nil || content == "" {
		return
	}
	s := slug.FromURL(pageURL)
	if s == "" {
		s = "page"
	}
	if _, err := p.archive.SaveSnapshot(content, s); err != nil {
		log.Printf("failed to archive snapshot for %s: %v", pageURL, err)
	}
}
