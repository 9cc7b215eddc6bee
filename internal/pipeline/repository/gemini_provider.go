package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiProvider analyzes items with the Google Gemini API.
type geminiProvider struct {
	cfg            config.Provider
	logger         *logger.Logger
	admission      *ratelimit.Admission
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiProvider creates a Gemini provider. Without a credential no client is built and
// every call degrades.
func NewGeminiProvider(ctx context.Context, cfg config.Provider, log *logger.Logger, admission *ratelimit.Admission) (AnalysisProvider, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}

	p := &geminiProvider{
		cfg:            cfg,
		logger:         log,
		admission:      admission,
		requestLimiter: ratelimit.PerMinute(cfg.MaxRequestPerMinute),
	}

	apiKey := cfg.Credential()
	if apiKey == "" {
		return p, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.genAiClient = client
	return p, nil
}

func (p *geminiProvider) Name() string {
	return p.cfg.Name
}

func (p *geminiProvider) Analyze(ctx context.Context, text string) (*ProviderReply, error) {
	if p.genAiClient == nil {
		p.logger.Warn("Provider API key not set, returning degraded opinion", logger.StringField("provider", p.cfg.Name))
		return &ProviderReply{Opinion: DegradedOpinion(p.cfg.Name + " not configured")},
			&ProviderError{Provider: p.cfg.Name, Kind: ErrorKindMissingCredentials, Err: errors.New("api key is empty")}
	}

	content, callErr := p.generate(ctx, BuildAnalyzeSignalPrompt(text))
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

func (p *geminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	if err := p.admission.Acquire(ctx); err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: fmt.Errorf("failed to acquire admission slot: %w", err)}
	}
	defer p.admission.Release()

	if err := p.requestLimiter.Wait(ctx); err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: fmt.Errorf("failed to wait for request limit: %w", err)}
	}

	callCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	temperature := p.cfg.Temperature
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	resp, err := p.genAiClient.Models.GenerateContent(callCtx, p.cfg.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, "user"),
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
	})
	if err != nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindTransport, Err: fmt.Errorf("gemini API call failed: %w", err)}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &ProviderError{Provider: p.cfg.Name, Kind: ErrorKindDecode, Err: errors.New("no candidates in gemini response")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
