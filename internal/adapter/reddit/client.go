// internal/adapter/reddit/client.go

package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/metrics"
)

const upstreamName = "reddit"

// relevantLimit is the page size used when ranking by relevance
const relevantLimit = 20

// Client handles interactions with the Reddit listing API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

// listing represents the structure of a Reddit listing response
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string       `json:"kind"`
			Data content.Post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewClient creates a new Reddit API client
func NewClient(cfg config.RedditConfig, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		logger:     logger.WithPrefix(upstreamName),
	}
}

// ListingURL builds the listing URL. top honours the timeframe and relevant
// reads the hot listing at a fixed page size.
func (c *Client) ListingURL(req content.ListingRequest) string {
	sub := url.PathEscape(req.Subreddit)
	limit := strconv.Itoa(req.Limit)

	switch req.Sort {
	case content.PostSortTop:
		timeframe := req.Timeframe
		if timeframe == "" {
			timeframe = "day"
		}
		return fmt.Sprintf("%s/r/%s/top.json?limit=%s&t=%s", c.baseURL, sub, limit, url.QueryEscape(timeframe))
	case content.PostSortRelevant:
		return fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, sub, relevantLimit)
	case content.PostSortNew:
		return fmt.Sprintf("%s/r/%s/new.json?limit=%s", c.baseURL, sub, limit)
	default:
		return fmt.Sprintf("%s/r/%s/hot.json?limit=%s", c.baseURL, sub, limit)
	}
}

// Listing fetches a raw listing. A missing subreddit maps to ErrSourceNotFound.
func (c *Client) Listing(ctx context.Context, req content.ListingRequest) ([]byte, error) {
	if req.Subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}

	listingURL := c.ListingURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Reddit throttles requests without a descriptive User-Agent
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: reddit: %v", content.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordUpstream(upstreamName, metrics.OutcomeNotFound)
		return nil, fmt.Errorf("r/%s: %w", req.Subreddit, content.ErrSourceNotFound)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: reddit status %d", content.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to read reddit response: %w", err)
	}

	metrics.RecordUpstream(upstreamName, metrics.OutcomeOK)
	return body, nil
}

// Posts fetches a listing and returns the posts that carry a title and subreddit
func (c *Client) Posts(ctx context.Context, req content.ListingRequest) ([]content.Post, error) {
	body, err := c.Listing(ctx, req)
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("failed to decode reddit listing: %w", err)
	}

	posts := make([]content.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if !child.Data.Valid() {
			continue
		}
		posts = append(posts, child.Data)
	}

	c.logger.Debug("fetched listing", "subreddit", req.Subreddit, "posts", len(posts))
	return posts, nil
}
