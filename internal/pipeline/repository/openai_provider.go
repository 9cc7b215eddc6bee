package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"

	"golang.org/x/time/rate"
)

const defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// openAIProvider talks to any OpenAI-compatible chat completions endpoint (OpenAI, DeepSeek, OpenRouter).
type openAIProvider struct {
	client         *http.Client
	cfg            config.Provider
	logger         *logger.Logger
	admission      *ratelimit.Admission
	requestLimiter *rate.Limiter
}

// NewOpenAIProvider creates an OpenAI-compatible provider sharing the given admission limiter.
func NewOpenAIProvider(cfg config.Provider, log *logger.Logger, admission *ratelimit.Admission) AnalysisProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultChatCompletionsURL
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}

	return &openAIProvider{
		client:         &http.Client{Timeout: timeout},
		cfg:            cfg,
		logger:         log,
		admission:      admission,
		requestLimiter: ratelimit.PerMinute(cfg.MaxRequestPerMinute),
	}
}

func (p *openAIProvider) Name() string {
	return p.cfg.Name
}

func (p *openAIProvider) Analyze(ctx context.Context, text string) (*ProviderReply, error) {
	apiKey := p.cfg.Credential()
	if apiKey == "" {
		p.logger.Warn("Provider API key not set, returning degraded opinion", logger.StringField("provider", p.cfg.Name))
		return &ProviderReply{Opinion: DegradedOpinion(p.cfg.Name + " not configured")},
			&ProviderError{Provider: p.cfg.Name, Kind: ErrorKindMissingCredentials, Err: errors.New("api key is empty")}
	}

	content, callErr := p.complete(ctx, apiKey, BuildAnalyzeSignalPrompt(text))
	if callErr != nil {
		p.logger.Error("Provider request failed", logger.ErrorField(callErr), logger.StringField("provider", p.cfg.Name))
		content = "{}"
	}

	opinion, tier := DecodeOpinion(content)
	if callErr == nil && tier == TierPlaceholder {
		callErr = &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindDecode, Err: errors.New("response is not a JSON object")}
	}
	return &ProviderReply{Opinion: opinion, Raw: content}, callErr
}

func (p *openAIProvider) complete(ctx context.Context, apiKey, prompt string) (string, error) {
	if err := p.admission.Acquire(ctx); err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: fmt.Errorf("failed to acquire admission slot: %w", err)}
	}
	defer p.admission.Release()

	if err := p.requestLimiter.Wait(ctx); err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: fmt.Errorf("failed to wait for request limit: %w", err)}
	}

	payload := dto.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []dto.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: p.cfg.Temperature,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	p.logger.Debug("Sending request to provider", logger.StringField("provider", p.cfg.Name), logger.StringField("model", p.cfg.Model))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindStatus, Err: fmt.Errorf("received non-OK response: %d - %s", resp.StatusCode, string(body))}
	}

	var completion dto.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindDecode, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	if len(completion.Choices) == 0 {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindDecode, Err: errors.New("no choices in response")}
	}

	p.logger.Debug("Provider responded",
		logger.StringField("provider", p.cfg.Name),
		logger.IntField("total_tokens", completion.Usage.TotalTokens),
	)
	return completion.Choices[0].Message.Content, nil
}
