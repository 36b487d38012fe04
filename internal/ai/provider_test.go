package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyModel(t *testing.T) {
	tests := []struct {
		modelID string
		want    Provider
	}{
		{"claude-sonnet-4", ProviderAnthropic},
		{"CLAUDE-OPUS", ProviderAnthropic},
		{"sonar-pro", ProviderPerplexity},
		{"pplx-70b-online", ProviderPerplexity},
		{"gpt-4o", ProviderOpenAI},
		{"gpt-4o-mini", ProviderOpenAI},
		{"o1-preview", ProviderOpenAI},
		{"o3-mini", ProviderOpenAI},
		{"o4-mini", ProviderOpenAI},
		{"gemini-pro", ProviderOpenAI}, // unknown defaults to openai
		{"", ProviderOpenAI},
		{"llama-3-70b", ProviderOpenAI},
	}
	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyModel(tt.modelID))
		})
	}
}

func TestShapeFor_ReasoningFamilies(t *testing.T) {
	for _, id := range []string{"o1-preview", "o3-mini", "o4-mini-high", "O1-pro"} {
		shape := ShapeFor(id)
		assert.True(t, shape.UseCompletionTokensField, id)
		assert.False(t, shape.AllowTemperature, id)
		assert.Equal(t, 4096, shape.MinTokens, id)
	}
}

func TestShapeFor_StandardModels(t *testing.T) {
	for _, id := range []string{"gpt-4o", "claude-sonnet-4", "sonar-pro"} {
		shape := ShapeFor(id)
		assert.False(t, shape.UseCompletionTokensField, id)
		assert.True(t, shape.AllowTemperature, id)
		assert.Equal(t, 300, shape.MinTokens, id)
	}
}

func TestShapeFor_PrefixNotSubstring(t *testing.T) {
	// "4o" contains "o4"-like text mid-id; only a prefix marks a
	// reasoning family.
	shape := ShapeFor("gpt-4o1")
	assert.False(t, shape.UseCompletionTokensField)
}
