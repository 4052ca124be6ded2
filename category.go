package scout

import (
	"strings"

	"github.com/driftlabs/scout/models"
)

// categoryGroups is checked in order and the first group with any
// keyword hit wins. The ordering is load-bearing: "cozy wine bar with
// live jazz" must resolve to bar, not concert, so changing the order
// changes categorization.
var categoryGroups = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryRestaurant, []string{"restaurant", "dining", "food", "eat", "dinner", "lunch", "brunch", "sushi", "pizza", "bistro"}},
	{models.CategoryBar, []string{"bar", "cocktail", "pub", "brewery", "wine", "lounge", "nightlife"}},
	{models.CategoryCafe, []string{"cafe", "café", "coffee", "espresso", "bakery", "tea"}},
	{models.CategoryConcert, []string{"concert", "live music", "show", "tour", "festival", "band"}},
	{models.CategoryEvent, []string{"event", "party", "meetup", "workshop", "class", "exhibition"}},
	{models.CategoryActivity, []string{"activity", "tour", "hike", "sport", "museum", "gallery", "adventure"}},
	{models.CategoryTrip, []string{"hotel", "resort", "airbnb", "vacation", "stay", "lodge"}},
}

// InferCategory maps free text onto the fixed taxonomy using ordered
// keyword groups; unmatched text is CategoryOther.
func InferCategory(text string) models.Category {
	if text == "" {
		return models.CategoryOther
	}
	t := strings.ToLower(text)
	for _, group := range categoryGroups {
		for _, kw := range group.keywords {
			if strings.Contains(t, kw) {
				return group.category
			}
		}
	}
	return models.CategoryOther
}

// inferOrEmpty returns the inferred category, or empty when the
// inference lands on "other" so the field can be omitted.
func inferOrEmpty(text string) models.Category {
	if c := InferCategory(text); c != models.CategoryOther {
		return c
	}
	return ""
}
