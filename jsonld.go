package scout

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/driftlabs/scout/models"
)

// extractJSONLD decodes every <script type="application/ld+json">
// block into a flat list of entities. Malformed blocks are skipped.
func extractJSONLD(doc *html.Node) []map[string]any {
	var entities []map[string]any
	blocks := scriptContents(doc, func(attrs map[string]string) bool {
		return strings.EqualFold(attrs["type"], "application/ld+json")
	})
	for _, block := range blocks {
		var raw any
		if err := json.Unmarshal([]byte(block), &raw); err != nil {
			continue
		}
		switch v := raw.(type) {
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					entities = append(entities, m)
				}
			}
		case map[string]any:
			entities = append(entities, v)
		}
	}
	return entities
}

// ldType returns the @type of a JSON-LD entity as a string.
func ldType(item map[string]any) string {
	switch t := item["@type"].(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func ldString(item map[string]any, key string) string {
	if s, ok := item[key].(string); ok {
		return s
	}
	return ""
}

// ldAddress renders a JSON-LD address, which may be a plain string or
// a PostalAddress object.
func ldAddress(addr any) string {
	switch a := addr.(type) {
	case string:
		return a
	case map[string]any:
		parts := []string{}
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
			if v, ok := a[key].(string); ok && v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// ldGeo extracts coordinates from an entity's geo object.
func ldGeo(item map[string]any) *models.Coordinates {
	geo, ok := item["geo"].(map[string]any)
	if !ok {
		return nil
	}
	lat, latOK := ldFloat(geo["latitude"])
	lng, lngOK := ldFloat(geo["longitude"])
	if !latOK || !lngOK {
		return nil
	}
	return &models.Coordinates{Lat: lat, Lng: lng}
}

func ldFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		var f float64
		if err := json.Unmarshal([]byte(n), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
