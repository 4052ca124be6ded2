package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/driftlabs/scout/models"
)

// score combines rating and review volume, 70/30. A missing or zero
// rating falls back to a proxy derived from the places-style ratings
// total; review volume is log-dampened so huge counts cannot drown a
// better-rated place.
func score(item models.ScoredItem) float64 {
	rating := 0.0
	switch {
	case item.Rating != nil && *item.Rating != 0:
		rating = *item.Rating
	case item.RatingsTotal != nil:
		rating = float64(*item.RatingsTotal) / 1000
	}

	reviews := 0
	switch {
	case item.ReviewCount != nil && *item.ReviewCount != 0:
		reviews = *item.ReviewCount
	case item.RatingsTotal != nil:
		reviews = *item.RatingsTotal
	}

	normalizedReviews := 0.0
	if reviews > 0 {
		normalizedReviews = math.Log(float64(reviews) + 1)
	}

	return rating*0.7 + normalizedReviews*0.3
}

// DedupeAndRank removes duplicate entries by normalized name (first
// occurrence wins), sorts the remainder by score descending and caps
// the list at limit. Items without a name are dropped. The sort is
// stable: equal scores keep their input order.
func DedupeAndRank(items []models.ScoredItem, limit int) []models.ScoredItem {
	if len(items) == 0 {
		return []models.ScoredItem{}
	}

	seen := make(map[string]struct{}, len(items))
	unique := make([]models.ScoredItem, 0, len(items))
	for _, item := range items {
		key := item.NameKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return score(unique[i]) > score(unique[j])
	})

	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// FilterByInterests keeps items whose name, categories or description
// mention any interest keyword. When nothing matches, the original
// list is returned unchanged so filtering can never empty a category.
func FilterByInterests(items []models.ScoredItem, interests []string) []models.ScoredItem {
	if len(interests) == 0 || len(items) == 0 {
		return items
	}

	keywords := make([]string, 0, len(interests))
	for _, i := range interests {
		keywords = append(keywords, strings.ToLower(i))
	}

	var filtered []models.ScoredItem
	for _, item := range items {
		text := strings.ToLower(strings.Join([]string{
			item.Name,
			strings.Join(item.Categories, " "),
			item.Description,
		}, " "))

		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				filtered = append(filtered, item)
				break
			}
		}
	}

	if len(filtered) == 0 {
		return items
	}
	return filtered
}
