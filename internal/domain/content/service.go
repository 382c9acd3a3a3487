// internal/domain/content/service.go

package content

import (
	"context"
)

// NewsFetcher is the news-aggregation collaborator
type NewsFetcher interface {
	// CheckCredentials returns ErrMissingCredentials when the fetcher cannot authenticate
	CheckCredentials() error

	// TopHeadlines returns headlines from a curated list of source identifiers
	TopHeadlines(ctx context.Context, sources []string, pageSize int) ([]Item, error)

	Searcher
}

// Searcher runs full-text news searches
type Searcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]Item, error)
}

// Aggregator builds a ranked local feed for a location
type Aggregator interface {
	Aggregate(ctx context.Context, location string, opts Options) (*Result, error)
}

// SnapshotStore persists aggregation results
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	RecentSnapshots(ctx context.Context, location string, limit int) ([]Snapshot, error)
}

// Publisher announces completed aggregations
type Publisher interface {
	PublishAggregated(ctx context.Context, r Result) error
}
