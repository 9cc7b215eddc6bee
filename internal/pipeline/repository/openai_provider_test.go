package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req dto.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[1].Content, "[CRYPTO] Bitcoin ETF approved")
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(dto.ChatCompletionResponse{
			Choices: []dto.Choice{{Message: dto.Message{Role: "assistant", Content: content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOpenAI(baseURL, apiKey string) repository.AnalysisProvider {
	return repository.NewOpenAIProvider(config.Provider{
		Name:    "openai",
		BaseURL: baseURL,
		Model:   "test-model",
		APIKey:  apiKey,
	}, logger.NewNop(), ratelimit.NewAdmission(2))
}

func TestOpenAIProviderAnalyze(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"summary":"ETF approved","label":"regulatory","impact":75,"confidence":80,"sentiment":1,"tickers":["BTC"]}`)

	reply, err := newOpenAI(srv.URL, "sk-test").Analyze(context.Background(), "[CRYPTO] Bitcoin ETF approved\nhttps://x.test/1")

	require.NoError(t, err)
	assert.Equal(t, "regulatory", reply.Opinion.Label)
	assert.Equal(t, 75, reply.Opinion.Impact)
	assert.Equal(t, []string{"BTC"}, reply.Opinion.Tickers)
	assert.Contains(t, reply.Raw, "ETF approved")
}

func TestOpenAIProviderDegradesOnNon2xx(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, `{"impact": 99}`)

	reply, err := newOpenAI(srv.URL, "sk-test").Analyze(context.Background(), "[CRYPTO] Bitcoin ETF approved")

	require.Error(t, err)
	var perr *repository.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, repository.ErrorKindStatus, perr.Kind)
	require.NotNil(t, reply.Opinion)
	assert.Equal(t, dto.DefaultImpact, reply.Opinion.Impact)
	assert.Equal(t, dto.LabelOther, reply.Opinion.Label)
}

func TestOpenAIProviderDegradesWithoutCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	reply, err := newOpenAI(srv.URL, "").Analyze(context.Background(), "anything")

	var perr *repository.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, repository.ErrorKindMissingCredentials, perr.Kind)
	assert.False(t, called)
	assert.Equal(t, "openai not configured", reply.Opinion.Summary)
	assert.Equal(t, 0, reply.Opinion.Sentiment)
}

func TestOpenAIProviderDegradesOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	reply, err := newOpenAI(url, "sk-test").Analyze(context.Background(), "anything")

	var perr *repository.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, repository.ErrorKindTransport, perr.Kind)
	assert.Equal(t, "{}", reply.Raw)
	assert.Equal(t, dto.DefaultConfidence, reply.Opinion.Confidence)
}
