// Package ai routes message-generation requests to the right provider
// and shapes each request to the quirks of the chosen model.
package ai

import "strings"

// Provider identifies a generation provider family.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderPerplexity Provider = "perplexity"
)

// classificationRule maps a model-id keyword to a provider. Order
// matters: the first matching rule wins. Adding a provider is a new
// row, not an edit.
type classificationRule struct {
	keyword  string
	provider Provider
}

var classificationTable = []classificationRule{
	{keyword: "claude", provider: ProviderAnthropic},
	{keyword: "sonar", provider: ProviderPerplexity},
	{keyword: "pplx", provider: ProviderPerplexity},
	{keyword: "gpt", provider: ProviderOpenAI},
	{keyword: "o1", provider: ProviderOpenAI},
	{keyword: "o3", provider: ProviderOpenAI},
	{keyword: "o4", provider: ProviderOpenAI},
}

// defaultProvider receives every model id no rule matches.
const defaultProvider = ProviderOpenAI

// ClassifyModel maps a model identifier to its provider. Pure and
// total: every input yields exactly one provider.
func ClassifyModel(modelID string) Provider {
	id := strings.ToLower(modelID)
	for _, rule := range classificationTable {
		if strings.Contains(id, rule.keyword) {
			return rule.provider
		}
	}
	return defaultProvider
}

// RequestShape captures the per-model parameter rules: which
// token-limit field the API accepts, whether a temperature parameter is
// permitted, and the minimum token budget for models that burn hidden
// reasoning tokens before emitting output.
type RequestShape struct {
	UseCompletionTokensField bool
	AllowTemperature         bool
	MinTokens                int
}

// reasoningFamilies lists model-id prefixes whose members consume
// hidden reasoning tokens and reject the legacy parameter set.
var reasoningFamilies = []string{"o1", "o3", "o4"}

// ShapeFor returns the request-shaping rules for a model id.
func ShapeFor(modelID string) RequestShape {
	id := strings.ToLower(modelID)
	for _, fam := range reasoningFamilies {
		if strings.HasPrefix(id, fam) {
			return RequestShape{
				UseCompletionTokensField: true,
				AllowTemperature:         false,
				MinTokens:                4096,
			}
		}
	}
	return RequestShape{
		UseCompletionTokensField: false,
		AllowTemperature:         true,
		MinTokens:                300,
	}
}
