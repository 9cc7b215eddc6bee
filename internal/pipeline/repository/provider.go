package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"
)

// AnalysisProvider calls one external analysis backend.
// Analyze always returns a usable opinion; a non-nil error only explains why the opinion is degraded.
type AnalysisProvider interface {
	Name() string
	Analyze(ctx context.Context, text string) (*ProviderReply, error)
}

// ProviderReply carries the decoded opinion and the raw text it was decoded from.
type ProviderReply struct {
	Opinion *dto.ProviderOpinion
	Raw     string
}

// ErrorKind classifies why a provider call degraded.
type ErrorKind string

const (
	ErrorKindMissingCredentials ErrorKind = "missing_credentials"
	ErrorKindTransport          ErrorKind = "transport"
	ErrorKindStatus             ErrorKind = "status"
	ErrorKindDecode             ErrorKind = "decode"
)

// ProviderError is the typed failure attached to a degraded reply.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DegradedOpinion is the neutral placeholder returned when a provider cannot answer.
func DegradedOpinion(summary string) *dto.ProviderOpinion {
	return &dto.ProviderOpinion{
		Summary:      summary,
		Label:        dto.LabelOther,
		Impact:       dto.DefaultImpact,
		Confidence:   dto.DefaultConfidence,
		Sentiment:    0,
		Region:       dto.RegionDefault,
		Tickers:      []string{},
		ActionWindow: dto.ActionWindowDefault,
		LatencyClass: common.LatencyFast,
	}
}

const (
	ProviderTypeOpenAI = "openai"
	ProviderTypeGemini = "gemini"
)

// NewAnalysisProviders builds one provider per config entry, in configured order.
// Every provider shares admission, which bounds concurrent outbound calls.
func NewAnalysisProviders(ctx context.Context, cfgs []config.Provider, admission *ratelimit.Admission, log *logger.Logger) ([]AnalysisProvider, error) {
	providers := make([]AnalysisProvider, 0, len(cfgs))
	for i, cfg := range cfgs {
		if cfg.Name == "" {
			cfg.Name = fmt.Sprintf("%s-%d", cfg.Type, i)
		}
		switch strings.ToLower(cfg.Type) {
		case "", ProviderTypeOpenAI:
			providers = append(providers, NewOpenAIProvider(cfg, log, admission))
		case ProviderTypeGemini:
			p, err := NewGeminiProvider(ctx, cfg, log, admission)
			if err != nil {
				return nil, fmt.Errorf("failed to create provider %s: %w", cfg.Name, err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown provider type %q for %s", cfg.Type, cfg.Name)
		}
	}
	return providers, nil
}
