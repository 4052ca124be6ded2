package scout

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, doc string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return node
}

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		name     string
		htmlDoc  string
		wantTitle string
		wantDesc  string
	}{
		{
			name: "og tags take precedence over title tag",
			htmlDoc: `<!DOCTYPE html>
<html>
<head>
	<meta property="og:title" content="Lucali" />
	<meta property="og:description" content="Best pizza in Brooklyn" />
	<title>Lucali - Carroll Gardens - Yelp</title>
</head>
<body></body>
</html>`,
			wantTitle: "Lucali",
			wantDesc:  "Best pizza in Brooklyn",
		},
		{
			name: "twitter tags fill gaps left by og",
			htmlDoc: `<!DOCTYPE html>
<html>
<head>
	<meta property="og:title" content="OG Title" />
	<meta name="twitter:description" content="Twitter description" />
	<title>Site Name</title>
</head>
<body></body>
</html>`,
			wantTitle: "OG Title",
			wantDesc:  "Twitter description",
		},
		{
			name: "title tag and meta description as fallbacks",
			htmlDoc: `<!DOCTYPE html>
<html>
<head>
	<title>Plain Page</title>
	<meta name="description" content="Plain description" />
</head>
<body></body>
</html>`,
			wantTitle: "Plain Page",
			wantDesc:  "Plain description",
		},
		{
			name:      "empty document yields empty meta",
			htmlDoc:   `<!DOCTYPE html><html><head></head><body></body></html>`,
			wantTitle: "",
			wantDesc:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := extractMeta(parseDoc(t, tt.htmlDoc))
			if meta.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", meta.Title, tt.wantTitle)
			}
			if meta.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", meta.Description, tt.wantDesc)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("x", 600)
	got := truncateDescription(long)
	if len([]rune(got)) != maxDescriptionRunes {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), maxDescriptionRunes)
	}
	if strings.HasSuffix(got, "...") {
		t.Error("truncation must not add an indicator")
	}

	short := "short text"
	if truncateDescription(short) != short {
		t.Errorf("short text should pass through unchanged")
	}

	// Truncation counts runes, not bytes
	accented := strings.Repeat("é", 250)
	if got := truncateTitle(accented); len([]rune(got)) != maxTitleRunes {
		t.Errorf("rune truncation = %d runes, want %d", len([]rune(got)), maxTitleRunes)
	}
}

func TestStripSuffix(t *testing.T) {
	if got := stripSuffix("Lucali - Yelp", " - Yelp"); got != "Lucali" {
		t.Errorf("stripSuffix = %q, want %q", got, "Lucali")
	}
	if got := stripSuffix("No Suffix Here", " - Yelp"); got != "No Suffix Here" {
		t.Errorf("stripSuffix = %q, want unchanged", got)
	}
}
