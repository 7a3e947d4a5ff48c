package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConditions(t *testing.T) {
	t.Run("empty column means no constraints", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Any"}
		cond, err := w.ParseConditions()
		require.NoError(t, err)
		assert.Nil(t, cond.AmountMin)
		assert.Nil(t, cond.AmountMax)
		assert.Nil(t, cond.Category)
	})

	t.Run("valid bounds", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Mid", Conditions: `{"amount_min":100,"amount_max":500,"category":"Transportation"}`}
		cond, err := w.ParseConditions()
		require.NoError(t, err)
		assert.Equal(t, int64(100), *cond.AmountMin)
		assert.Equal(t, int64(500), *cond.AmountMax)
		assert.Equal(t, "Transportation", *cond.Category)
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Broken", Conditions: `{"amount_min":`}
		_, err := w.ParseConditions()
		assert.Error(t, err)
	})

	t.Run("inverted bounds are rejected", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Inverted", Conditions: `{"amount_min":500,"amount_max":100}`}
		_, err := w.ParseConditions()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount_min > amount_max")
	})
}

func TestParseLevels(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Two Step", ApprovalLevels: `[{"level":1,"role":"manager"},{"level":2,"role":"admin"}]`}
		levels, err := w.ParseLevels()
		require.NoError(t, err)
		require.Len(t, levels, 2)
		assert.Equal(t, 1, levels[0].Level)
		assert.Equal(t, "manager", levels[0].Role)
	})

	t.Run("empty chain is rejected", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Empty", ApprovalLevels: `[]`}
		_, err := w.ParseLevels()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no approval levels")
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		w := ApprovalWorkflow{Name: "Broken", ApprovalLevels: `[{`}
		_, err := w.ParseLevels()
		assert.Error(t, err)
	})
}
