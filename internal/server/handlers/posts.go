// internal/server/handlers/posts.go

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/domain/content"
)

const defaultListingLimit = 25

// PostsHandler serves the community discussion feed and the raw listing proxy
type PostsHandler struct {
	feed   content.PostFeed
	source content.PostSource
	logger *log.Logger
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(feed content.PostFeed, source content.PostSource, logger *log.Logger) *PostsHandler {
	return &PostsHandler{
		feed:   feed,
		source: source,
		logger: logger,
	}
}

// GetPosts returns the merged feed for ?location=
func (h *PostsHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "Location parameter required")
		return
	}

	sortBy := content.ParsePostSort(r.URL.Query().Get("sort"))
	timeframe := r.URL.Query().Get("timeframe")

	posts, err := h.feed.Feed(r.Context(), location, sortBy, timeframe)
	if err != nil {
		h.logger.Error("failed to build posts feed", "location", location, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch Reddit data")
		return
	}
	if posts == nil {
		posts = []content.Post{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts":        posts,
		"totalResults": len(posts),
		"location":     location,
		"sort":         sortBy,
	})
}

// GetSubreddit proxies a single listing unchanged
func (h *PostsHandler) GetSubreddit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	subreddit := strings.TrimSpace(q.Get("subreddit"))
	if subreddit == "" {
		respondWithError(w, http.StatusBadRequest, "Subreddit is required")
		return
	}

	limit, err := queryInt(r, "limit", defaultListingLimit)
	if err != nil || limit <= 0 {
		limit = defaultListingLimit
	}

	body, err := h.source.Listing(r.Context(), content.ListingRequest{
		Subreddit: subreddit,
		Sort:      content.ParsePostSort(q.Get("sort")),
		Limit:     limit,
		Timeframe: q.Get("timeframe"),
	})
	if err != nil {
		if errors.Is(err, content.ErrSourceNotFound) {
			respondWithError(w, http.StatusNotFound, "Subreddit not found")
			return
		}
		h.logger.Error("reddit listing failed", "subreddit", subreddit, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch Reddit data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
