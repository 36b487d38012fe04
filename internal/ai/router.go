package ai

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/broker"
	"github.com/sells-group/outreach-cli/pkg/chatapi"
)

// Sentinel errors for the router's failure modes. API failures wrap the
// underlying error instead.
var (
	ErrNoAPIKey            = eris.New("ai: no api key for provider")
	ErrModelNotConfigured  = eris.New("ai: no model configured")
	ErrUnsupportedProvider = eris.New("ai: unsupported provider")
)

// Router dispatches generation requests by model id. Credentials are
// fetched from the broker per call and never cached here.
type Router struct {
	broker     broker.Client
	openai     chatapi.Client
	perplexity chatapi.Client
	anthropic  anthropic.Client
}

// NewRouter wires a router from its provider clients.
func NewRouter(brokerClient broker.Client, openaiClient, perplexityClient chatapi.Client, anthropicClient anthropic.Client) *Router {
	return &Router{
		broker:     brokerClient,
		openai:     openaiClient,
		perplexity: perplexityClient,
		anthropic:  anthropicClient,
	}
}

// Generate produces an outreach message for the given profile using the
// model's provider. The prompt is deterministic; the provider call is
// the only non-deterministic step.
func (r *Router) Generate(ctx context.Context, modelID string, profile model.ProfileData, firstName, sampleStyle string) (string, error) {
	if strings.TrimSpace(modelID) == "" {
		return "", ErrModelNotConfigured
	}

	provider := ClassifyModel(modelID)

	key, err := r.broker.Key(ctx, string(provider))
	if err != nil {
		return "", eris.Wrapf(err, "ai: key lookup for %s", provider)
	}
	if key == "" {
		return "", ErrNoAPIKey
	}

	prompt := BuildPrompt(profile, firstName, sampleStyle)
	shape := ShapeFor(modelID)

	zap.L().Debug("ai: generating message",
		zap.String("model", modelID),
		zap.String("provider", string(provider)),
	)

	switch provider {
	case ProviderAnthropic:
		return r.generateAnthropic(ctx, key, modelID, prompt, shape)
	case ProviderOpenAI:
		return r.generateChat(ctx, r.openai, key, modelID, prompt, shape)
	case ProviderPerplexity:
		return r.generateChat(ctx, r.perplexity, key, modelID, prompt, shape)
	default:
		return "", ErrUnsupportedProvider
	}
}

func (r *Router) generateAnthropic(ctx context.Context, key, modelID, prompt string, shape RequestShape) (string, error) {
	req := anthropic.MessageRequest{
		Model:     modelID,
		MaxTokens: int64(shape.MinTokens),
		Prompt:    prompt,
	}
	if shape.AllowTemperature {
		temp := 0.8
		req.Temperature = &temp
	}

	resp, err := r.anthropic.CreateMessage(ctx, key, req)
	if err != nil {
		return "", eris.Wrapf(err, "ai: generate via %s", modelID)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (r *Router) generateChat(ctx context.Context, client chatapi.Client, key, modelID, prompt string, shape RequestShape) (string, error) {
	req := chatapi.ChatCompletionRequest{
		Model:    modelID,
		Messages: []chatapi.Message{{Role: "user", Content: prompt}},
	}

	tokens := shape.MinTokens
	if shape.UseCompletionTokensField {
		req.MaxCompletionTokens = &tokens
	} else {
		req.MaxTokens = &tokens
	}
	if shape.AllowTemperature {
		temp := 0.8
		req.Temperature = &temp
	}

	resp, err := client.ChatCompletion(ctx, key, req)
	if err != nil {
		return "", eris.Wrapf(err, "ai: generate via %s", modelID)
	}
	return strings.TrimSpace(resp.Content()), nil
}
