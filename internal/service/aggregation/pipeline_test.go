package aggregation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"locallens/internal/domain/content"
	"locallens/internal/logging"
)

var fixedNow = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu sync.Mutex

	credErr      error
	headlines    []content.Item
	headlinesErr error
	results      map[string][]content.Item
	searchErr    error

	headlineSources  [][]string
	headlinePageSize []int
	queries          []string
	queryPageSize    []int
}

func (f *fakeFetcher) CheckCredentials() error {
	return f.credErr
}

func (f *fakeFetcher) TopHeadlines(_ context.Context, sources []string, pageSize int) ([]content.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headlineSources = append(f.headlineSources, sources)
	f.headlinePageSize = append(f.headlinePageSize, pageSize)
	return f.headlines, f.headlinesErr
}

func (f *fakeFetcher) Search(_ context.Context, query string, pageSize int) ([]content.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.queryPageSize = append(f.queryPageSize, pageSize)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

type fakeStore struct {
	saved []content.Snapshot
	err   error
}

func (s *fakeStore) SaveSnapshot(_ context.Context, snap content.Snapshot) error {
	s.saved = append(s.saved, snap)
	return s.err
}

func (s *fakeStore) RecentSnapshots(_ context.Context, location string, limit int) ([]content.Snapshot, error) {
	var out []content.Snapshot
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if s.saved[i].Location == location {
			out = append(out, s.saved[i])
		}
	}
	return out, s.err
}

type fakePublisher struct {
	published []content.Result
	err       error
}

func (p *fakePublisher) PublishAggregated(_ context.Context, r content.Result) error {
	p.published = append(p.published, r)
	return p.err
}

func newTestPipeline(fetcher content.NewsFetcher, opts ...Option) *Pipeline {
	opts = append([]Option{
		WithThrottleFactory(func() *Throttle {
			return NewThrottleWithLimiter(rate.NewLimiter(rate.Inf, 1))
		}),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewPipeline(fetcher, DefaultConfig(), logging.Discard(), opts...)
}

func newsItem(n int, title string) content.Item {
	return content.Item{
		Kind:       content.KindNews,
		Title:      title,
		URL:        fmt.Sprintf("https://news.example/%d", n),
		SourceName: "Wire",
	}
}

// baltimoreFetcher returns 3 curated items (2 relevant, 1 not) and 5
// relevant items for the first search query.
func baltimoreFetcher() *fakeFetcher {
	return &fakeFetcher{
		headlines: []content.Item{
			newsItem(1, "Baltimore council approves budget"),
			newsItem(2, "Harbor cleanup expands in Baltimore"),
			newsItem(3, "National markets rally"),
		},
		results: map[string][]content.Item{
			`"Baltimore" "MD" news`: {
				newsItem(10, "Baltimore schools announce new calendar"),
				newsItem(11, "Baltimore restaurant week returns"),
				newsItem(12, "Storm damage reported across Baltimore"),
				newsItem(13, "Baltimore police arrest suspect in robbery"),
				newsItem(14, "Ravens fans celebrate in Baltimore, Baltimore cheers"),
			},
		},
	}
}

func TestAggregate_Baltimore(t *testing.T) {
	fetcher := baltimoreFetcher()
	pipeline := newTestPipeline(fetcher)

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{PageSize: 20})
	require.NoError(t, err)

	// One curated call for the first five sources
	require.Len(t, fetcher.headlineSources, 1)
	assert.Len(t, fetcher.headlineSources[0], 5)
	assert.Equal(t, "the-baltimore-sun", fetcher.headlineSources[0][0])
	assert.Equal(t, []int{15}, fetcher.headlinePageSize)

	// Then the first four queries
	assert.Equal(t, []string{
		`"Baltimore" "MD" news`,
		`"Baltimore" local news`,
		`"Baltimore" breaking news`,
		"Baltimore MD",
	}, fetcher.queries)
	assert.Equal(t, []int{8, 8, 8, 8}, fetcher.queryPageSize)

	// 2 curated + 5 searched
	require.Len(t, result.Items, 7)
	assert.Equal(t, 7, result.TotalResults())
	for i := 1; i < len(result.Items); i++ {
		assert.GreaterOrEqual(t, result.Items[i-1].RelevanceScore, result.Items[i].RelevanceScore)
	}
	assert.Equal(t, "https://news.example/14", result.Items[0].URL)

	for _, item := range result.Items {
		assert.NotEmpty(t, item.Categories)
		assert.True(t, item.Sentiment.Valid())
		assert.NotEqual(t, "https://news.example/3", item.URL)
	}

	total := 0
	for _, n := range result.Analytics.Sentiment {
		total += n
	}
	assert.Equal(t, 7, total)

	assert.Equal(t, []string{"baltimore", "baltimore county", "baltimore md", "baltimore, md"}, result.SearchTermsUsed)
	assert.Equal(t, "the-baltimore-sun", result.SourcesQueried[0])
	assert.Equal(t, "Baltimore, MD", result.Location)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, fixedNow, result.GeneratedAt)
}

func TestAggregate_MissingCredentials(t *testing.T) {
	fetcher := &fakeFetcher{credErr: fmt.Errorf("newsapi: %w", content.ErrMissingCredentials)}
	pipeline := newTestPipeline(fetcher)

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, content.ErrMissingCredentials)
	assert.Empty(t, fetcher.headlineSources)
	assert.Empty(t, fetcher.queries)
}

func TestAggregate_UpstreamFailuresAreNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		headlinesErr: fmt.Errorf("%w: status 500", content.ErrUpstream),
		searchErr:    fmt.Errorf("%w: status 429", content.ErrUpstream),
	}
	pipeline := newTestPipeline(fetcher)

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Len(t, fetcher.queries, 4)
	assert.Zero(t, result.Analytics.AverageImpact)
	assert.Zero(t, result.Analytics.AverageRelevance)
	assert.Equal(t, 0, result.Analytics.Sentiment[content.SentimentNeutral])
}

func TestAggregate_PartialFailure(t *testing.T) {
	fetcher := baltimoreFetcher()
	fetcher.headlinesErr = errors.New("connection reset")
	fetcher.headlines = nil
	pipeline := newTestPipeline(fetcher)

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 5)
}

func TestAggregate_Options(t *testing.T) {
	minImpact := 25.0

	tests := []struct {
		name    string
		opts    content.Options
		wantLen int
		check   func(t *testing.T, item content.Item)
	}{
		{
			name:    "page size caps the result",
			opts:    content.Options{PageSize: 3},
			wantLen: 3,
		},
		{
			name:    "category filter",
			opts:    content.Options{Category: "crime"},
			wantLen: 1,
			check: func(t *testing.T, item content.Item) {
				assert.Contains(t, item.Categories, "crime")
			},
		},
		{
			name:    "minimum impact",
			opts:    content.Options{MinImpact: &minImpact},
			wantLen: 3,
			check: func(t *testing.T, item content.Item) {
				assert.GreaterOrEqual(t, item.ImpactScore, minImpact)
			},
		},
		{
			name:    "sentiment filter",
			opts:    content.Options{Sentiment: content.SentimentNegative},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newTestPipeline(baltimoreFetcher())

			result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", tt.opts)
			require.NoError(t, err)
			require.Len(t, result.Items, tt.wantLen)
			if tt.check != nil {
				for _, item := range result.Items {
					tt.check(t, item)
				}
			}
		})
	}
}

func TestAggregate_DedupesAcrossSources(t *testing.T) {
	fetcher := baltimoreFetcher()
	dup := newsItem(1, "Baltimore council approves budget")
	fetcher.results[`"Baltimore" local news`] = []content.Item{dup, newsItem(20, "BALTIMORE council approves budget!")}
	pipeline := newTestPipeline(fetcher)

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 7)
}

func TestAggregate_RecordsSnapshotAndPublishes(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	pipeline := newTestPipeline(baltimoreFetcher(), WithSnapshotStore(store), WithPublisher(publisher))

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, result.ID, store.saved[0].ID)
	assert.Equal(t, 7, store.saved[0].ItemCount)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, result.ID, publisher.published[0].ID)

	snapshots, err := pipeline.RecentSnapshots(context.Background(), "Baltimore, MD", 5)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
	assert.True(t, pipeline.HasSnapshotStore())
}

func TestAggregate_RecordFailuresAreNotFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	publisher := &fakePublisher{err: errors.New("no responders")}
	pipeline := newTestPipeline(baltimoreFetcher(), WithSnapshotStore(store), WithPublisher(publisher))

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 7)
}

func TestAggregate_SupplementarySearch(t *testing.T) {
	supplement := &fakeFetcher{results: map[string][]content.Item{
		`"Baltimore" "MD" news`: {newsItem(30, "Baltimore library opens new branch")},
	}}
	pipeline := newTestPipeline(baltimoreFetcher(), WithSupplementarySearch(supplement))

	result, err := pipeline.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 8)
	assert.Equal(t, []string{`"Baltimore" "MD" news`}, supplement.queries)
}

func TestAggregate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(baltimoreFetcher()).Aggregate(ctx, "Baltimore, MD", content.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecentSnapshots_NoStore(t *testing.T) {
	pipeline := newTestPipeline(&fakeFetcher{})

	_, err := pipeline.RecentSnapshots(context.Background(), "Baltimore, MD", 5)
	assert.Error(t, err)
	assert.False(t, pipeline.HasSnapshotStore())
}

func TestAggregate_ThrottleIsPerRequest(t *testing.T) {
	const interval = 50 * time.Millisecond

	fetcher := baltimoreFetcher()
	p := newTestPipeline(fetcher, WithQueryInterval(interval))

	// One request: 4 queries, the first immediate, then 3 waits
	start := time.Now()
	_, err := p.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
	require.NoError(t, err)
	single := time.Since(start)
	assert.GreaterOrEqual(t, single, 3*interval-10*time.Millisecond)

	// Two concurrent requests each get their own pacing
	var wg sync.WaitGroup
	errs := make([]error, 2)
	start = time.Now()
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
		}(i)
	}
	wg.Wait()
	both := time.Since(start)

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	// A shared limiter would serialize 8 queries (7 waits)
	assert.Less(t, both, 6*interval)
}

func TestAggregate_ThrottleFactoryCalledPerRequest(t *testing.T) {
	calls := 0
	p := newTestPipeline(baltimoreFetcher(), WithThrottleFactory(func() *Throttle {
		calls++
		return NewThrottle(0)
	}))

	for i := 0; i < 3; i++ {
		_, err := p.Aggregate(context.Background(), "Baltimore, MD", content.Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
