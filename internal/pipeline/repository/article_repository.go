package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

// ArticleRepository extracts the readable body text of an article page.
type ArticleRepository interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(timeout time.Duration, userAgent string, log *logger.Logger) ArticleRepository {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &articleRepository{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    log,
	}
}

type articleRepository struct {
	client    *http.Client
	userAgent string
	logger    *logger.Logger
}

func (r *articleRepository) FetchContent(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for article: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	return utils.SafeText(strings.TrimSpace(docHTML.Text())), nil
}
