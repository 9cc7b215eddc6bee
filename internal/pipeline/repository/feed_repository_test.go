package repository_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>Fed raises rates</title><link>https://news.test/fed</link><pubDate>Mon, 19 Oct 2026 08:00:00 GMT</pubDate></item>
<item><title>Undated item</title><link>https://news.test/undated</link></item>
</channel></rss>`

const htmlBody = `<html><body><ul>
<li><a href="/a/1">Central bank publishes new liquidity rules</a></li>
<li><a href="https://other.test/2"><h3>Regulator fines exchange for reporting gaps</h3></a></li>
<li><a href="/short">Hi</a></li>
</ul></body></html>`

func TestFeedRepositoryParsesRSS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	entries, err := repository.NewFeedRepository(repository.FeedOptions{}, logger.NewNop()).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Fed raises rates", entries[0].Title)
	assert.Equal(t, "https://news.test/fed", entries[0].Link)
	require.NotNil(t, entries[0].Published)
	assert.Equal(t, 2026, entries[0].Published.Year())
	assert.Nil(t, entries[1].Published)
}

func TestFeedRepositorySniffsFeedServedAsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	entries, err := repository.NewFeedRepository(repository.FeedOptions{}, logger.NewNop()).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFeedRepositoryHTMLFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(htmlBody))
	}))
	defer srv.Close()

	strict := repository.NewFeedRepository(repository.FeedOptions{}, logger.NewNop())
	_, err := strict.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, repository.ErrNotAFeed)

	lenient := repository.NewFeedRepository(repository.FeedOptions{HTMLFallback: true}, logger.NewNop())
	entries, err := lenient.Fetch(context.Background(), srv.URL+"/news")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, srv.URL+"/a/1", entries[0].Link)
	assert.Equal(t, "Regulator fines exchange for reporting gaps", entries[1].Title)
	assert.Nil(t, entries[0].Published)
}

func TestFeedRepositoryNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := repository.NewFeedRepository(repository.FeedOptions{}, logger.NewNop()).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
