package service

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workflow(name, conditions string) model.ApprovalWorkflow {
	return model.ApprovalWorkflow{
		ID:             uuid.New(),
		Name:           name,
		Conditions:     conditions,
		ApprovalLevels: `[{"level":1,"role":"manager"}]`,
		IsActive:       true,
	}
}

func TestSelectWorkflow_FirstMatchWins(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("Small Expenses", `{"amount_max":500000}`),
		workflow("Everything", `{}`),
	}

	// 3000 BDT fits both condition sets; creation order decides
	selected := SelectWorkflow(workflows, 300000, "")
	require.NotNil(t, selected)
	assert.Equal(t, "Small Expenses", selected.Name)
}

func TestSelectWorkflow_AmountBoundsAreInclusive(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("Mid Range", `{"amount_min":100000,"amount_max":500000}`),
	}

	tests := []struct {
		name    string
		amount  int64
		matches bool
	}{
		{name: "below minimum", amount: 99999, matches: false},
		{name: "at minimum", amount: 100000, matches: true},
		{name: "at maximum", amount: 500000, matches: true},
		{name: "above maximum", amount: 500001, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectWorkflow(workflows, tt.amount, "")
			if tt.matches {
				require.NotNil(t, selected)
				assert.Equal(t, "Mid Range", selected.Name)
			} else {
				assert.Nil(t, selected)
			}
		})
	}
}

func TestSelectWorkflow_CategoryCondition(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("Travel Only", `{"category":"Travel & Accommodation"}`),
	}

	t.Run("matching category", func(t *testing.T) {
		selected := SelectWorkflow(workflows, 100000, "Travel & Accommodation")
		require.NotNil(t, selected)
	})

	t.Run("different category", func(t *testing.T) {
		assert.Nil(t, SelectWorkflow(workflows, 100000, "Transportation"))
	})

	t.Run("uncategorized expense passes category conditions", func(t *testing.T) {
		selected := SelectWorkflow(workflows, 100000, "")
		require.NotNil(t, selected)
	})
}

func TestSelectWorkflow_FallsBackToStandardWorkflow(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow(model.DefaultWorkflowName, `{"amount_max":100000}`),
		workflow("High Value", `{"amount_min":10000000}`),
	}

	// 5000 BDT matches neither condition set
	selected := SelectWorkflow(workflows, 500000, "")
	require.NotNil(t, selected)
	assert.Equal(t, model.DefaultWorkflowName, selected.Name)
}

func TestSelectWorkflow_NoMatchAndNoFallback(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("High Value", `{"amount_min":10000000}`),
	}

	assert.Nil(t, SelectWorkflow(workflows, 500000, ""))
}

func TestSelectWorkflow_SkipsMalformedConditions(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("Broken", `{"amount_min":`),
		workflow("Everything", `{}`),
	}

	selected := SelectWorkflow(workflows, 100000, "")
	require.NotNil(t, selected)
	assert.Equal(t, "Everything", selected.Name)
}

func TestSelectWorkflow_EmptyConditionsMatchEverything(t *testing.T) {
	workflows := []model.ApprovalWorkflow{
		workflow("Everything", ""),
	}

	selected := SelectWorkflow(workflows, 1, "")
	require.NotNil(t, selected)
}
