package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/logging"
)

const listingBody = `{
  "kind": "Listing",
  "data": {
    "after": "t3_x",
    "children": [
      {"kind": "t3", "data": {"id": "a1", "title": "Crab feast this weekend", "subreddit": "baltimore", "score": 120, "num_comments": 30, "created_utc": 1715680800}},
      {"kind": "t3", "data": {"id": "a2", "title": "", "subreddit": "baltimore"}},
      {"kind": "t3", "data": {"id": "a3", "title": "No community"}}
    ]
  }
}`

func newTestClient(baseURL string) *Client {
	return NewClient(config.RedditConfig{
		BaseURL:   baseURL,
		UserAgent: "LocalLens/1.0.0",
		Timeout:   5 * time.Second,
	}, logging.Discard())
}

func TestClient_ListingURL(t *testing.T) {
	client := newTestClient("https://www.reddit.com")

	tests := []struct {
		name string
		req  content.ListingRequest
		want string
	}{
		{
			name: "hot",
			req:  content.ListingRequest{Subreddit: "baltimore", Sort: content.PostSortHot, Limit: 15},
			want: "https://www.reddit.com/r/baltimore/hot.json?limit=15",
		},
		{
			name: "new",
			req:  content.ListingRequest{Subreddit: "baltimore", Sort: content.PostSortNew, Limit: 15},
			want: "https://www.reddit.com/r/baltimore/new.json?limit=15",
		},
		{
			name: "top with timeframe",
			req:  content.ListingRequest{Subreddit: "baltimore", Sort: content.PostSortTop, Limit: 15, Timeframe: "week"},
			want: "https://www.reddit.com/r/baltimore/top.json?limit=15&t=week",
		},
		{
			name: "top defaults to day",
			req:  content.ListingRequest{Subreddit: "baltimore", Sort: content.PostSortTop, Limit: 15},
			want: "https://www.reddit.com/r/baltimore/top.json?limit=15&t=day",
		},
		{
			name: "relevant reads hot at fixed size",
			req:  content.ListingRequest{Subreddit: "baltimore", Sort: content.PostSortRelevant, Limit: 5},
			want: "https://www.reddit.com/r/baltimore/hot.json?limit=20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.ListingURL(tt.req))
		})
	}
}

func TestClient_Posts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/baltimore/hot.json", r.URL.Path)
		assert.Equal(t, "LocalLens/1.0.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(listingBody))
	}))
	defer server.Close()

	posts, err := newTestClient(server.URL).Posts(context.Background(), content.ListingRequest{
		Subreddit: "baltimore",
		Sort:      content.PostSortHot,
		Limit:     15,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "a1", posts[0].ID)
	assert.Equal(t, 120, posts[0].Score)
	assert.Equal(t, 30, posts[0].NumComments)
	assert.Equal(t, time.Unix(1715680800, 0).UTC(), posts[0].Created())
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Listing(context.Background(), content.ListingRequest{Subreddit: "nope", Limit: 15})
	assert.ErrorIs(t, err, content.ErrSourceNotFound)
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Posts(context.Background(), content.ListingRequest{Subreddit: "baltimore", Limit: 15})
	assert.ErrorIs(t, err, content.ErrUpstream)
}

func TestClient_RequiresSubreddit(t *testing.T) {
	_, err := newTestClient("http://unused").Listing(context.Background(), content.ListingRequest{})
	assert.Error(t, err)
}
