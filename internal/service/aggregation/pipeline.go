// internal/service/aggregation/pipeline.go

package aggregation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"locallens/internal/domain/content"
	"locallens/internal/domain/geo"
	"locallens/internal/metrics"
	geoService "locallens/internal/service/geo"
	"locallens/internal/service/ranking"
)

// searchTermsReported is how many aliases are echoed back in a result
const searchTermsReported = 5

// Config holds aggregation tuning
type Config struct {
	DefaultPageSize     int
	MaxPageSize         int
	CuratedSourceLimit  int
	CuratedPageSize     int
	QueryLimit          int
	MaxQueries          int
	QueryPageSize       int
	MinRelevance        float64
	MinCuratedRelevance float64
}

// DefaultConfig returns the production tuning
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:     20,
		MaxPageSize:         100,
		CuratedSourceLimit:  5,
		CuratedPageSize:     15,
		QueryLimit:          6,
		MaxQueries:          4,
		QueryPageSize:       8,
		MinRelevance:        ranking.DefaultMinRelevance,
		MinCuratedRelevance: ranking.DefaultMinCuratedRelevance,
	}
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithQueryInterval sets the spacing between one request's search queries
func WithQueryInterval(interval time.Duration) Option {
	return func(p *Pipeline) {
		p.newThrottle = func() *Throttle { return NewThrottle(interval) }
	}
}

// WithThrottleFactory replaces how each request builds its query throttle
func WithThrottleFactory(newThrottle func() *Throttle) Option {
	return func(p *Pipeline) { p.newThrottle = newThrottle }
}

// WithClock injects the time source used for recency
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSnapshotStore persists every successful result
func WithSnapshotStore(store content.SnapshotStore) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithPublisher announces every successful result
func WithPublisher(pub content.Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithSupplementarySearch adds a secondary search index queried with the
// highest-priority query
func WithSupplementarySearch(s content.Searcher) Option {
	return func(p *Pipeline) { p.supplement = s }
}

// Pipeline aggregates, scores and ranks local news for a location
type Pipeline struct {
	fetcher     content.NewsFetcher
	supplement  content.Searcher
	store       content.SnapshotStore
	publisher   content.Publisher
	newThrottle func() *Throttle // called once per Aggregate
	now         func() time.Time
	logger      *log.Logger
	config      Config
}

// NewPipeline creates a new aggregation pipeline
func NewPipeline(fetcher content.NewsFetcher, config Config, logger *log.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:     fetcher,
		newThrottle: func() *Throttle { return NewThrottle(DefaultQueryInterval) },
		now:         time.Now,
		logger:      logger.WithPrefix("aggregation"),
		config:      config,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Aggregate builds the ranked feed for location. A missing credential is the
// only fatal condition; upstream failures are logged and skipped.
func (p *Pipeline) Aggregate(ctx context.Context, location string, opts content.Options) (*content.Result, error) {
	start := time.Now()

	if err := p.fetcher.CheckCredentials(); err != nil {
		p.logger.Error("news fetcher not configured", "err", err)
		return nil, err
	}

	now := p.now()
	scorer := ranking.NewScorerWithClock(func() time.Time { return now })
	classifier := ranking.NewClassifierWithClock(func() time.Time { return now })

	profile := geoService.BuildProfile(location)
	queries := geoService.SearchQueries(profile, p.config.QueryLimit)
	sources := geoService.CuratedSources(profile.StateLower)

	p.logger.Debug("aggregating",
		"location", location,
		"aliases", len(profile.Aliases),
		"queries", len(queries),
		"sources", len(sources),
	)

	var pool []content.Item

	// Curated outlets first, held to the stricter threshold
	curated := sources[:min(len(sources), p.config.CuratedSourceLimit)]
	if len(curated) > 0 {
		items, err := p.fetcher.TopHeadlines(ctx, curated, p.config.CuratedPageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.Warn("curated fetch failed", "location", location, "err", err)
		}
		pool = append(pool, p.scoreAbove(items, profile, scorer, p.config.MinCuratedRelevance)...)
	}

	// Then the highest-priority search queries, paced
	searchQueries := queries[:min(len(queries), max(p.config.MaxQueries, 0))]
	err := Each(ctx, p.newThrottle(), searchQueries, func(ctx context.Context, query string) {
		items, err := p.fetcher.Search(ctx, query, p.config.QueryPageSize)
		if err != nil {
			p.logger.Warn("search query failed", "query", query, "err", err)
			return
		}
		pool = append(pool, p.scoreAbove(items, profile, scorer, p.config.MinRelevance)...)
	})
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if p.supplement != nil && len(queries) > 0 {
		items, err := p.supplement.Search(ctx, queries[0], p.config.QueryPageSize)
		if err != nil {
			p.logger.Warn("supplementary search failed", "query", queries[0], "err", err)
		}
		pool = append(pool, p.scoreAbove(items, profile, scorer, p.config.MinRelevance)...)
	}

	// Merged pool threshold, classification and caller filters
	filtered := make([]content.Item, 0, len(pool))
	for _, item := range pool {
		if item.RelevanceScore <= p.config.MinRelevance {
			continue
		}
		classifier.Classify(item).Apply(&item)
		if !matchesOptions(item, opts) {
			continue
		}
		filtered = append(filtered, item)
	}

	ranking.SortByRank(filtered)
	items := ranking.Dedupe(filtered, p.pageSize(opts.PageSize))

	aliases := profile.Aliases[:min(len(profile.Aliases), searchTermsReported)]

	result := &content.Result{
		ID:              uuid.NewString(),
		Location:        location,
		Items:           items,
		Analytics:       ranking.Summarize(items),
		SearchTermsUsed: append([]string(nil), aliases...),
		SourcesQueried:  sources,
		GeneratedAt:     now,
	}

	p.record(ctx, result)

	metrics.RecordAggregation(time.Since(start).Seconds(), len(items))
	p.logger.Info("aggregated news",
		"location", location,
		"candidates", len(pool),
		"items", len(items),
		"duration", time.Since(start),
	)

	return result, nil
}

// RecentSnapshots returns stored results for a location, newest first
func (p *Pipeline) RecentSnapshots(ctx context.Context, location string, limit int) ([]content.Snapshot, error) {
	if p.store == nil {
		return nil, errors.New("snapshot store not configured")
	}
	snapshots, err := p.store.RecentSnapshots(ctx, location, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	return snapshots, nil
}

// HasSnapshotStore reports whether results are persisted
func (p *Pipeline) HasSnapshotStore() bool {
	return p.store != nil
}

// scoreAbove scores every item and keeps those strictly above threshold
func (p *Pipeline) scoreAbove(items []content.Item, profile geo.LocationProfile, scorer *ranking.Scorer, threshold float64) []content.Item {
	kept := make([]content.Item, 0, len(items))
	for _, item := range items {
		item.RelevanceScore = scorer.Score(item, profile)
		if item.RelevanceScore > threshold {
			kept = append(kept, item)
		}
	}
	return kept
}

// record persists and announces a result; failures never fail the request
func (p *Pipeline) record(ctx context.Context, result *content.Result) {
	if p.store != nil {
		snapshot := content.Snapshot{
			ID:        result.ID,
			Location:  result.Location,
			ItemCount: len(result.Items),
			CreatedAt: result.GeneratedAt,
			Result:    *result,
		}
		if err := p.store.SaveSnapshot(ctx, snapshot); err != nil {
			p.logger.Warn("failed to save snapshot", "location", result.Location, "err", err)
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishAggregated(ctx, *result); err != nil {
			p.logger.Warn("failed to publish aggregation", "location", result.Location, "err", err)
		}
	}
}

func (p *Pipeline) pageSize(requested int) int {
	if requested <= 0 {
		return p.config.DefaultPageSize
	}
	if p.config.MaxPageSize > 0 && requested > p.config.MaxPageSize {
		return p.config.MaxPageSize
	}
	return requested
}

// matchesOptions applies the optional category, sentiment and impact filters
func matchesOptions(item content.Item, opts content.Options) bool {
	if opts.Category != "" && !item.HasCategory(opts.Category) {
		return false
	}
	if opts.Sentiment != "" && item.Sentiment != opts.Sentiment {
		return false
	}
	if opts.MinImpact != nil && item.ImpactScore < *opts.MinImpact {
		return false
	}
	return true
}
