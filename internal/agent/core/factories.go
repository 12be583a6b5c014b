package core

import (
	"context"
	"fmt"
	"os"

	"github.com/intakehq/intake/config"
)

// NewLLMProvider creates an LLM provider based on configuration. The first
// configured provider wins; groq speaks the OpenAI chat-completions wire
// format, so both share one client with different base URLs.
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}

	for _, provider := range cfg.Providers {
		switch provider.Type {
		case "openai":
			return NewChatProvider("openai", "https://api.openai.com/v1", provider), nil
		case "groq":
			return NewChatProvider("groq", "https://api.groq.com/openai/v1", provider), nil
		default:
			return nil, fmt.Errorf("unsupported LLM provider type: %s", provider.Type)
		}
	}

	return nil, fmt.Errorf("no valid LLM providers found")
}

// ChatProvider implements LLMProvider over an OpenAI-compatible
// chat-completions endpoint.
type ChatProvider struct {
	provider  string
	config    config.LLMProvider
	baseURL   string
	models    map[string]ModelInfo
	rawModels map[string]config.LLMModel
	http      *HTTPClient
}

// NewChatProvider creates a provider for one OpenAI-compatible API.
func NewChatProvider(name, defaultBaseURL string, cfg config.LLMProvider) *ChatProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &ChatProvider{
		provider:  name,
		config:    cfg,
		baseURL:   baseURL,
		models:    make(map[string]ModelInfo),
		rawModels: cfg.Models,
		http:      NewHTTPClient(cfg.Timeout, cfg.MaxRetries, 0),
	}

	for key, model := range cfg.Models {
		p.models[key] = ModelInfo{
			Name:            model.Name,
			Provider:        name,
			MaxTokens:       model.MaxTokens,
			CostPer1KInput:  model.CostPer1K,
			CostPer1KOutput: model.CostPer1KOutput,
		}
	}

	return p
}

// Complete sends one chat completion and returns the raw text reply.
func (p *ChatProvider) Complete(ctx context.Context, systemPrompt, userPrompt, model string, temperature float64, maxTokens int) (string, error) {
	reply, _, _, err := p.CompleteWithTokens(ctx, systemPrompt, userPrompt, model, temperature, maxTokens)
	return reply, err
}

// CompleteWithTokens is Complete plus prompt/completion token usage.
func (p *ChatProvider) CompleteWithTokens(ctx context.Context, systemPrompt, userPrompt, model string, temperature float64, maxTokens int) (string, int64, int64, error) {
	apiKey := p.config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("INTAKE_LLM_API_KEY")
	}
	if apiKey == "" {
		return "", 0, 0, fmt.Errorf("%s API key not configured", p.provider)
	}

	m, ok := p.rawModels[model]
	if !ok {
		return "", 0, 0, fmt.Errorf("model %s not configured", model)
	}
	apiModel := m.APIName
	if apiModel == "" {
		apiModel = m.Name
	}
	if maxTokens <= 0 {
		maxTokens = m.MaxTokens
	}

	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatReq struct {
		Model       string    `json:"model"`
		Messages    []chatMsg `json:"messages"`
		Temperature float64   `json:"temperature,omitempty"`
		MaxTokens   int       `json:"max_tokens,omitempty"`
	}

	msgs := []chatMsg{}
	if systemPrompt != "" {
		msgs = append(msgs, chatMsg{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMsg{Role: "user", Content: userPrompt})

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
	}

	err := p.http.DoJSON(ctx, "POST", p.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + apiKey},
		chatReq{Model: apiModel, Messages: msgs, Temperature: temperature, MaxTokens: maxTokens},
		&out)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%s completion: %w", p.provider, err)
	}
	if len(out.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("%s completion: no choices in response", p.provider)
	}

	return out.Choices[0].Message.Content, out.Usage.PromptTokens, out.Usage.CompletionTokens, nil
}

// GetAvailableModels returns configured model keys.
func (p *ChatProvider) GetAvailableModels() []string {
	var models []string
	for name := range p.models {
		models = append(models, name)
	}
	return models
}

// GetModelInfo returns information about a specific model.
func (p *ChatProvider) GetModelInfo(model string) (ModelInfo, error) {
	info, exists := p.models[model]
	if !exists {
		return ModelInfo{}, fmt.Errorf("model not found: %s", model)
	}
	return info, nil
}

// CalculateCost calculates the cost for a given number of tokens.
func (p *ChatProvider) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	info, err := p.GetModelInfo(model)
	if err != nil {
		return 0.0
	}
	inputCost := float64(inputTokens) / 1000.0 * info.CostPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * info.CostPer1KOutput
	return inputCost + outputCost
}
