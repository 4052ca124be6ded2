package scout

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	maxTitleRunes       = 200
	maxDescriptionRunes = 500
)

// pageMeta holds the Open Graph / Twitter card view of a page.
type pageMeta struct {
	Title       string
	Description string
	Image       string
}

// extractMeta walks the document for og:* properties, with twitter:*
// values filling gaps, then the <title> tag and the plain description
// meta as final fallbacks.
func extractMeta(doc *html.Node) pageMeta {
	og := map[string]string{}
	tw := map[string]string{}
	var htmlTitle, metaDescription string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var property, name, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = strings.ToLower(attr.Val)
					case "name":
						name = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}
				if content == "" {
					break
				}
				if strings.HasPrefix(property, "og:") {
					key := property[3:]
					if og[key] == "" {
						og[key] = content
					}
				}
				if strings.HasPrefix(name, "twitter:") {
					key := name[8:]
					if tw[key] == "" {
						tw[key] = content
					}
				}
				if name == "description" && metaDescription == "" {
					metaDescription = content
				}
			case "title":
				if htmlTitle == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					htmlTitle = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	pick := func(key, fallback string) string {
		if v := og[key]; v != "" {
			return v
		}
		if v := tw[key]; v != "" {
			return v
		}
		return fallback
	}

	return pageMeta{
		Title:       strings.TrimSpace(pick("title", htmlTitle)),
		Description: strings.TrimSpace(pick("description", metaDescription)),
		Image:       pick("image", ""),
	}
}

// scriptContents collects the text of every <script> node matching the
// predicate.
func scriptContents(doc *html.Node, match func(attrs map[string]string) bool) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			attrs := make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				attrs[strings.ToLower(a.Key)] = a.Val
			}
			if match(attrs) {
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				if b.Len() > 0 {
					out = append(out, b.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// truncateRunes caps s at n runes with no truncation indicator.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func truncateTitle(s string) string       { return truncateRunes(s, maxTitleRunes) }
func truncateDescription(s string) string { return truncateRunes(s, maxDescriptionRunes) }

// stripSuffix removes a platform suffix like " - Yelp" and trims.
func stripSuffix(title, suffix string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, suffix, ""))
}
