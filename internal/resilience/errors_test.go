package resilience

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	base := eris.New("element not found")
	err := Categorize(CategoryAutomation, base)

	require.Error(t, err)
	assert.Equal(t, CategoryAutomation, CategoryOf(err))
	assert.Contains(t, err.Error(), "automation:")
	assert.Contains(t, err.Error(), "element not found")
}

func TestCategorize_NilPassthrough(t *testing.T) {
	assert.NoError(t, Categorize(CategoryNetwork, nil))
}

func TestCategoryOf_DefaultsToAutomation(t *testing.T) {
	assert.Equal(t, CategoryAutomation, CategoryOf(eris.New("plain error")))
}

func TestCategoryOf_FindsNestedCategory(t *testing.T) {
	inner := Categorize(CategoryTimeout, eris.New("composer did not appear"))
	wrapped := eris.Wrap(inner, "send message")
	assert.Equal(t, CategoryTimeout, CategoryOf(wrapped))
}

func TestCategoryOf_OutermostWins(t *testing.T) {
	inner := Categorize(CategoryNetwork, eris.New("connection refused"))
	outer := Categorize(CategoryAutomation, inner)
	assert.Equal(t, CategoryAutomation, CategoryOf(outer))
}
