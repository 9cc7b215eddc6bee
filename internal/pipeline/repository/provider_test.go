package repository_test

import (
	"context"
	"errors"
	"testing"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisProvidersKeepsOrder(t *testing.T) {
	providers, err := repository.NewAnalysisProviders(context.Background(), []config.Provider{
		{Name: "primary", Type: "openai"},
		{Name: "secondary", Type: "gemini"},
		{Type: "openai"},
	}, ratelimit.NewAdmission(2), logger.NewNop())
	require.NoError(t, err)
	require.Len(t, providers, 3)
	assert.Equal(t, "primary", providers[0].Name())
	assert.Equal(t, "secondary", providers[1].Name())
	assert.Equal(t, "openai-2", providers[2].Name())
}

func TestNewAnalysisProvidersRejectsUnknownType(t *testing.T) {
	_, err := repository.NewAnalysisProviders(context.Background(), []config.Provider{{Name: "x", Type: "carrier-pigeon"}}, ratelimit.NewAdmission(1), logger.NewNop())
	assert.Error(t, err)
}

func TestGeminiProviderDegradesWithoutCredentials(t *testing.T) {
	p, err := repository.NewGeminiProvider(context.Background(), config.Provider{Name: "gemini"}, logger.NewNop(), ratelimit.NewAdmission(1))
	require.NoError(t, err)

	reply, err := p.Analyze(context.Background(), "[CRYPTO] headline\nhttps://news.test/1")
	require.NotNil(t, reply)
	assert.Equal(t, 25, reply.Opinion.Impact)
	assert.Equal(t, "gemini not configured", reply.Opinion.Summary)

	var perr *repository.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, repository.ErrorKindMissingCredentials, perr.Kind)
}
