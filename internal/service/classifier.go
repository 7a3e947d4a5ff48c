package service

import (
	"strings"

	"backend/internal/model"
)

// MaxConfidence caps the classifier's heuristic score. The ratio is a
// keyword-match strength, not a calibrated probability, so it never claims
// full certainty.
const MaxConfidence = 95.0

// categoryKeywords maps category names to their match keywords. Categories
// without an entry here are never auto-selected.
var categoryKeywords = map[string][]string{
	"Transportation":         {"transport", "taxi", "uber", "bus", "train", "fuel", "parking"},
	"Meals & Entertainment":  {"meal", "lunch", "dinner", "restaurant", "food", "coffee"},
	"Office Supplies":        {"office", "supplies", "stationery", "paper", "pen"},
	"Travel & Accommodation": {"hotel", "accommodation", "flight", "travel", "booking"},
	"Communication":          {"phone", "internet", "mobile", "communication"},
	"Training & Development": {"training", "course", "seminar", "workshop"},
	"Equipment & Technology": {"computer", "laptop", "software", "equipment"},
}

// Classify picks the best-fit category for an expense by keyword matching
// against the lower-cased title+description. Per candidate category the score
// is matched_keywords/total_keywords; the highest non-zero score wins and the
// returned confidence is min(score*100, MaxConfidence). Returns (nil, 0.0)
// when nothing matches. The amount is currently unused by the heuristic but
// kept in the signature for future weighting.
func Classify(categories []model.ExpenseCategory, title, description string, amount int64) (*model.ExpenseCategory, float64) {
	text := strings.ToLower(title + " " + description)

	var best *model.ExpenseCategory
	confidence := 0.0

	for i := range categories {
		category := &categories[i]
		if !category.IsActive {
			continue
		}
		keywords, ok := categoryKeywords[category.Name]
		if !ok {
			continue
		}

		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				matches++
			}
		}

		score := float64(matches) / float64(len(keywords))
		if score > confidence {
			confidence = score
			best = category
		}
	}

	if best == nil {
		return nil, 0.0
	}

	confidence = confidence * 100
	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}
	return best, confidence
}
