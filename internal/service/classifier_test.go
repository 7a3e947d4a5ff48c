package service

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCategory(name string) model.ExpenseCategory {
	return model.ExpenseCategory{ID: uuid.New(), Name: name, IsActive: true}
}

func TestClassify_PicksBestKeywordMatch(t *testing.T) {
	categories := []model.ExpenseCategory{
		activeCategory("Transportation"),
		activeCategory("Meals & Entertainment"),
		activeCategory("Office Supplies"),
	}

	tests := []struct {
		name         string
		title        string
		description  string
		wantCategory string
	}{
		{
			name:         "taxi expense maps to transportation",
			title:        "Taxi to client office",
			wantCategory: "Transportation",
		},
		{
			name:         "lunch maps to meals",
			title:        "Team lunch",
			description:  "lunch at a restaurant with the client",
			wantCategory: "Meals & Entertainment",
		},
		{
			name:         "stationery maps to office supplies",
			title:        "Stationery restock",
			description:  "paper and pen for the front desk",
			wantCategory: "Office Supplies",
		},
		{
			name:         "matching is case insensitive",
			title:        "UBER RIDE",
			wantCategory: "Transportation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, confidence := Classify(categories, tt.title, tt.description, 50000)
			require.NotNil(t, category)
			assert.Equal(t, tt.wantCategory, category.Name)
			assert.Greater(t, confidence, 0.0)
		})
	}
}

func TestClassify_NoMatchReturnsNil(t *testing.T) {
	categories := []model.ExpenseCategory{
		activeCategory("Transportation"),
	}

	category, confidence := Classify(categories, "Quarterly insurance premium", "", 120000)
	assert.Nil(t, category)
	assert.Equal(t, 0.0, confidence)
}

func TestClassify_ConfidenceIsCapped(t *testing.T) {
	categories := []model.ExpenseCategory{
		activeCategory("Training & Development"),
	}

	// All four keywords present: raw ratio is 1.0, so 100 would exceed the cap
	category, confidence := Classify(categories,
		"Training course", "seminar and workshop registration", 500000)
	require.NotNil(t, category)
	assert.Equal(t, MaxConfidence, confidence)
}

func TestClassify_ConfidenceReflectsMatchRatio(t *testing.T) {
	categories := []model.ExpenseCategory{
		activeCategory("Communication"),
	}

	// 2 of 4 communication keywords
	category, confidence := Classify(categories, "Mobile phone bill", "", 80000)
	require.NotNil(t, category)
	assert.InDelta(t, 50.0, confidence, 0.001)
}

func TestClassify_SkipsInactiveCategories(t *testing.T) {
	inactive := activeCategory("Transportation")
	inactive.IsActive = false

	category, confidence := Classify([]model.ExpenseCategory{inactive}, "taxi fare", "", 30000)
	assert.Nil(t, category)
	assert.Equal(t, 0.0, confidence)
}

func TestClassify_SkipsCategoriesWithoutKeywords(t *testing.T) {
	categories := []model.ExpenseCategory{
		activeCategory("Miscellaneous"),
	}

	category, _ := Classify(categories, "taxi fare", "", 30000)
	assert.Nil(t, category)
}
