package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxSourceBytes = 5 << 20

// ErrNotAFeed is returned when a source is neither a feed nor scrapable HTML.
var ErrNotAFeed = errors.New("source is not a structured feed")

// FeedRepository reads candidate entries from an external source.
type FeedRepository interface {
	Fetch(ctx context.Context, sourceURL string) ([]dto.FeedEntry, error)
}

// FeedOptions tunes how sources are fetched.
type FeedOptions struct {
	Timeout      time.Duration
	UserAgent    string
	HTMLFallback bool
}

// NewFeedRepository creates a new instance of FeedRepository.
func NewFeedRepository(opts FeedOptions, log *logger.Logger) FeedRepository {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	return &feedRepository{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: log,
	}
}

type feedRepository struct {
	client *http.Client
	opts   FeedOptions
	logger *logger.Logger
}

func (r *feedRepository) Fetch(ctx context.Context, sourceURL string) ([]dto.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/html;q=0.8, */*;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch source, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read source body: %w", err)
	}

	declared := looksLikeFeed(resp.Header.Get("Content-Type"), body)

	// Undeclared sources still get a parse attempt; many servers send feeds as text/html.
	feed, parseErr := gofeed.NewParser().Parse(bytes.NewReader(body))
	if parseErr == nil {
		return entriesFromFeed(feed, sourceURL), nil
	}
	if declared {
		return nil, fmt.Errorf("failed to parse feed: %w", parseErr)
	}
	if !r.opts.HTMLFallback {
		return nil, ErrNotAFeed
	}

	r.logger.Debug("Source is not a feed, scraping HTML", logger.StringField("url", sourceURL))
	return scrapeHTML(body, sourceURL)
}

func looksLikeFeed(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "xml") || strings.Contains(ct, "rss") || strings.Contains(ct, "atom") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<?xml") || strings.HasPrefix(head, "<rss") || strings.HasPrefix(head, "<feed")
}

func entriesFromFeed(feed *gofeed.Feed, sourceURL string) []dto.FeedEntry {
	entries := make([]dto.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		extra := map[string]interface{}{}
		if item.GUID != "" {
			extra["guid"] = item.GUID
		}
		if item.Description != "" {
			extra["description"] = utils.Truncate(utils.SafeText(item.Description), 1000)
		}
		if len(item.Categories) > 0 {
			extra["categories"] = item.Categories
		}
		if item.Published != "" {
			extra["published_raw"] = item.Published
		}

		entries = append(entries, dto.FeedEntry{
			Title:     utils.SafeText(item.Title),
			Link:      strings.TrimSpace(item.Link),
			Published: published,
			Source:    sourceURL,
			Format:    feed.FeedType,
			Extra:     extra,
		})
	}
	return entries
}

func scrapeHTML(body []byte, sourceURL string) ([]dto.FeedEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	base, _ := url.Parse(sourceURL)

	var entries []dto.FeedEntry
	seen := map[string]bool{}
	doc.Find("article, .news-item, .post, .news, li").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a[href]").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		title := utils.SafeText(s.Find("h1, h2, h3, h4").First().Text())
		if title == "" {
			title = utils.SafeText(anchor.Text())
		}
		if len([]rune(title)) < 10 {
			return
		}

		link := strings.TrimSpace(href)
		if base != nil {
			if ref, err := url.Parse(link); err == nil {
				link = base.ResolveReference(ref).String()
			}
		}
		if seen[link] {
			return
		}
		seen[link] = true

		entries = append(entries, dto.FeedEntry{
			Title:  title,
			Link:   link,
			Source: sourceURL,
			Format: "html",
		})
	})

	if len(entries) == 0 {
		return nil, ErrNotAFeed
	}
	return entries, nil
}
