// internal/adapter/googlenews/client.go

package googlenews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"

	"locallens/internal/adapter/sanitize"
	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/metrics"
)

const upstreamName = "googlenews"

// Client searches the Google News RSS index
type Client struct {
	httpClient *http.Client
	searchURL  string
	userAgent  string
	logger     *log.Logger
}

// NewClient creates a new Google News RSS client
func NewClient(cfg config.NewsConfig, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		searchURL:  cfg.GoogleNewsURL,
		userAgent:  cfg.UserAgent,
		logger:     logger.WithPrefix(upstreamName),
	}
}

// Search returns up to pageSize feed entries for query
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]content.Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: google news: %v", content.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: google news status %d", content.ErrUpstream, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to parse google news feed: %w", err)
	}
	metrics.RecordUpstream(upstreamName, metrics.OutcomeOK)

	items := make([]content.Item, 0, min(len(feed.Items), max(pageSize, 0)))
	for _, entry := range feed.Items {
		if len(items) >= pageSize {
			break
		}
		if entry.Link == "" || entry.Title == "" {
			continue
		}
		items = append(items, toItem(entry))
	}

	c.logger.Debug("searched", "query", query, "items", len(items))
	return items, nil
}

// toItem converts an entry. Titles arrive as "Headline - Publisher".
func toItem(entry *gofeed.Item) content.Item {
	title, source := splitPublisher(entry.Title)

	item := content.Item{
		Kind:        content.KindNews,
		Title:       title,
		Description: sanitize.StripTags(entry.Description),
		URL:         entry.Link,
		SourceName:  source,
	}
	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	}
	return item
}

func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
