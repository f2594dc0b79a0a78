package receipt

import (
	"strings"

	"Go-Receipt-Vault/domain"
)

// categoryKeywords drives the best-effort fallback classification used when
// neither the caller nor the extraction service supplied a category.
var categoryKeywords = map[string][]string{
	domain.CategoryGrocery:       {"grocery", "supermarket", "market", "produce", "walmart", "aldi", "costco", "kroger", "lidl"},
	domain.CategoryRestaurant:    {"restaurant", "cafe", "coffee", "diner", "pizzeria", "bistro", "bar & grill", "sushi"},
	domain.CategoryFuel:          {"fuel", "gasoline", "petrol", "diesel", "gas station", "shell", "chevron", "exxon"},
	domain.CategoryPharmacy:      {"pharmacy", "apothecary", "drugstore", "cvs", "walgreens", "prescription"},
	domain.CategoryElectronics:   {"electronics", "computer", "laptop", "phone", "best buy", "hardware"},
	domain.CategoryClothing:      {"clothing", "apparel", "fashion", "shoes", "outlet"},
	domain.CategoryHousehold:     {"furniture", "home improvement", "ikea", "garden", "cleaning"},
	domain.CategoryTravel:        {"hotel", "airline", "flight", "train", "taxi", "parking"},
	domain.CategoryEntertainment: {"cinema", "theater", "tickets", "concert", "museum"},
}

// ClassifyText scores raw receipt text against the keyword table and returns
// the best-matching category, or empty when nothing matches.
func ClassifyText(rawText string) string {
	text := strings.ToLower(rawText)
	if text == "" {
		return ""
	}

	best := ""
	bestScore := 0
	for _, category := range domain.Categories {
		score := 0
		for _, keyword := range categoryKeywords[category] {
			score += strings.Count(text, keyword)
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best
}
