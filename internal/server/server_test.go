package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/domain/geo"
	"locallens/internal/logging"
)

type stubAggregator struct{}

func (stubAggregator) Aggregate(ctx context.Context, location string, opts content.Options) (*content.Result, error) {
	return &content.Result{Location: location}, nil
}

type stubFeed struct{}

func (stubFeed) Feed(ctx context.Context, location string, sortBy content.PostSort, timeframe string) ([]content.Post, error) {
	return nil, nil
}

type stubPosts struct{}

func (stubPosts) Listing(ctx context.Context, req content.ListingRequest) ([]byte, error) {
	return []byte(`{}`), nil
}

func (stubPosts) Posts(ctx context.Context, req content.ListingRequest) ([]content.Post, error) {
	return nil, nil
}

type stubEvents struct{}

func (stubEvents) FindEvents(ctx context.Context, q content.EventQuery) (*content.EventsResult, error) {
	return &content.EventsResult{}, nil
}

type stubGeocoder struct{}

func (stubGeocoder) Search(ctx context.Context, query string) ([]geo.LocationContext, error) {
	return nil, nil
}

func (stubGeocoder) Reverse(ctx context.Context, lat, lon float64) (*geo.LocationContext, error) {
	return &geo.LocationContext{Latitude: lat, Longitude: lon}, nil
}

func testRouter() http.Handler {
	return NewRouter(config.ServerConfig{CorsOrigins: []string{"http://localhost:3000"}}, Dependencies{
		Aggregator:   stubAggregator{},
		Feed:         stubFeed{},
		Posts:        stubPosts{},
		Events:       stubEvents{},
		EventsConfig: config.EventsConfig{DefaultRadius: 25, DefaultPageSize: 20},
		Geocoder:     stubGeocoder{},
		Logger:       logging.Discard(),
	})
}

func TestRouter_Routes(t *testing.T) {
	router := testRouter()

	tests := []struct {
		path string
		code int
	}{
		{"/api/health", http.StatusOK},
		{"/api/v1/news?location=Baltimore", http.StatusOK},
		{"/api/v1/news", http.StatusBadRequest},
		{"/api/v1/news/snapshots?location=Baltimore", http.StatusServiceUnavailable},
		{"/api/v1/posts?location=Baltimore", http.StatusOK},
		{"/api/v1/reddit?subreddit=baltimore", http.StatusOK},
		{"/api/v1/events?location=Baltimore,%20MD", http.StatusOK},
		{"/api/v1/geo/search?q=balt", http.StatusOK},
		{"/api/v1/geo/reverse?lat=1&lon=2", http.StatusOK},
		{"/api/v1/proxy-image", http.StatusBadRequest},
		{"/metrics", http.StatusOK},
		{"/ws/news?location=Baltimore", http.StatusNotFound},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/news", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
