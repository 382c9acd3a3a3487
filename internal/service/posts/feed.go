// internal/service/posts/feed.go

package posts

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"locallens/internal/domain/content"
	geoService "locallens/internal/service/geo"
	"locallens/internal/service/ranking"
)

// Config holds feed tuning
type Config struct {
	PostLimit int
	FeedCap   int
}

// Feed assembles the discussion feed for a location from its communities
type Feed struct {
	source content.PostSource
	now    func() time.Time
	logger *log.Logger
	config Config
}

// NewFeed creates a new posts feed
func NewFeed(source content.PostSource, config Config, logger *log.Logger) *Feed {
	return &Feed{
		source: source,
		now:    time.Now,
		logger: logger.WithPrefix("posts"),
		config: config,
	}
}

// WithClock injects the time source used for engagement decay
func (f *Feed) WithClock(now func() time.Time) *Feed {
	f.now = now
	return f
}

// Feed fetches every community for the location in turn. Missing
// communities and failed fetches are skipped.
func (f *Feed) Feed(ctx context.Context, location string, sortBy content.PostSort, timeframe string) ([]content.Post, error) {
	var collected []content.Post

	for _, sub := range geoService.SubredditsForLocation(location) {
		req := content.ListingRequest{
			Subreddit: sub,
			Sort:      sortBy,
			Limit:     f.config.PostLimit,
			Timeframe: timeframe,
		}

		posts, err := f.source.Posts(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, content.ErrSourceNotFound) {
				f.logger.Warn("subreddit not found", "subreddit", sub)
				continue
			}
			f.logger.Error("failed to fetch subreddit", "subreddit", sub, "err", err)
			continue
		}
		collected = append(collected, posts...)
	}

	if sortBy == content.PostSortRelevant {
		collected = f.rankByRelevance(collected, location)
	} else {
		sort.SliceStable(collected, func(i, j int) bool {
			return collected[i].CreatedUTC > collected[j].CreatedUTC
		})
	}

	if f.config.FeedCap > 0 && len(collected) > f.config.FeedCap {
		collected = collected[:f.config.FeedCap]
	}

	f.logger.Debug("built feed", "location", location, "sort", sortBy, "posts", len(collected))
	return collected, nil
}

func (f *Feed) rankByRelevance(posts []content.Post, location string) []content.Post {
	now := f.now()

	relevant := make([]content.Post, 0, len(posts))
	for _, post := range posts {
		if !ranking.IsLocationRelevantPost(post, location) {
			continue
		}
		post.RelevanceScore = ranking.ScorePost(post, location, now)
		relevant = append(relevant, post)
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].RelevanceScore > relevant[j].RelevanceScore
	})
	return relevant
}
