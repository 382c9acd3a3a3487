package content

import (
	"context"
	"time"
)

// Post is a discussion-platform post as returned by the listing API
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Thumbnail   string  `json:"thumbnail"`
	IsVideo     bool    `json:"is_video"`
	Domain      string  `json:"domain"`
	FlairText   string  `json:"link_flair_text,omitempty"`

	RelevanceScore float64 `json:"relevanceScore,omitempty"`
}

// Created returns the creation time of the post
func (p Post) Created() time.Time {
	sec := int64(p.CreatedUTC)
	nsec := int64((p.CreatedUTC - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// Valid reports whether the post carries the fields every consumer relies on
func (p Post) Valid() bool {
	return p.Title != "" && p.Subreddit != ""
}

// PostSort selects how a posts feed is ordered
type PostSort string

const (
	PostSortHot      PostSort = "hot"
	PostSortNew      PostSort = "new"
	PostSortTop      PostSort = "top"
	PostSortRelevant PostSort = "relevant"
)

// ParsePostSort maps a query value to a sort mode, defaulting to hot
func ParsePostSort(s string) PostSort {
	switch PostSort(s) {
	case PostSortNew, PostSortTop, PostSortRelevant:
		return PostSort(s)
	default:
		return PostSortHot
	}
}

// ListingRequest selects one page of a community listing
type ListingRequest struct {
	Subreddit string
	Sort      PostSort
	Limit     int
	Timeframe string
}

// PostSource fetches community listings
type PostSource interface {
	// Listing returns the raw listing body
	Listing(ctx context.Context, req ListingRequest) ([]byte, error)

	// Posts returns the valid posts of a listing
	Posts(ctx context.Context, req ListingRequest) ([]Post, error)
}

// PostFeed builds the discussion feed for a location
type PostFeed interface {
	Feed(ctx context.Context, location string, sort PostSort, timeframe string) ([]Post, error)
}
