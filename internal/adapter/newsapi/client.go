// internal/adapter/newsapi/client.go

package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"locallens/internal/adapter/sanitize"
	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/metrics"
)

const upstreamName = "newsapi"

// removedMarker is the title NewsAPI uses for withdrawn articles
const removedMarker = "[Removed]"

// Cache stores raw response bodies keyed by request
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

// Client fetches articles from the NewsAPI v2 endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	cache      Cache
	logger     *log.Logger
}

// NewClient creates a new NewsAPI client
func NewClient(cfg config.NewsConfig, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		logger:     logger.WithPrefix(upstreamName),
	}
}

// WithCache enables response caching
func (c *Client) WithCache(cache Cache) *Client {
	c.cache = cache
	return c
}

// article is the NewsAPI article shape
type article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// response is the NewsAPI envelope for both success and error bodies
type response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// CheckCredentials reports a missing API key
func (c *Client) CheckCredentials() error {
	if c.apiKey == "" {
		return fmt.Errorf("news api key: %w", content.ErrMissingCredentials)
	}
	return nil
}

// TopHeadlines returns headlines from the given source identifiers
func (c *Client) TopHeadlines(ctx context.Context, sources []string, pageSize int) ([]content.Item, error) {
	params := url.Values{}
	params.Set("sources", strings.Join(sources, ","))
	params.Set("pageSize", strconv.Itoa(pageSize))

	return c.fetch(ctx, "/top-headlines", params)
}

// Search runs an everything query, newest first, English only
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]content.Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))

	return c.fetch(ctx, "/everything", params)
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]content.Item, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	requestURL := c.baseURL + endpoint + "?" + params.Encode()

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode newsapi response: %w", err)
	}

	items := make([]content.Item, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.Title == removedMarker {
			continue
		}
		items = append(items, toItem(a))
	}

	return items, nil
}

// get returns the response body, serving from cache when possible
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, requestURL)
		if err != nil {
			c.logger.Warn("cache read failed", "err", err)
		} else if ok {
			metrics.RecordUpstream(upstreamName, metrics.OutcomeCacheHit)
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: newsapi: %v", content.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to read newsapi response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)

		var apiErr response
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("%w: newsapi status %d: %s", content.ErrUpstream, resp.StatusCode, apiErr.Message)
	}

	metrics.RecordUpstream(upstreamName, metrics.OutcomeOK)

	if c.cache != nil {
		if err := c.cache.Set(ctx, requestURL, body); err != nil {
			c.logger.Warn("cache write failed", "err", err)
		}
	}

	return body, nil
}

func toItem(a article) content.Item {
	item := content.Item{
		Kind:        content.KindNews,
		Title:       strings.TrimSpace(a.Title),
		Description: sanitize.StripTags(a.Description),
		URL:         a.URL,
		ImageURL:    a.URLToImage,
		SourceName:  a.Source.Name,
	}

	if published, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		item.PublishedAt = published
	}

	return item
}
