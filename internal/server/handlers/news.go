// internal/server/handlers/news.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"locallens/internal/domain/content"
)

// SnapshotLister reads persisted aggregation results
type SnapshotLister interface {
	RecentSnapshots(ctx context.Context, location string, limit int) ([]content.Snapshot, error)
}

// NewsHandler serves the aggregated local news feed
type NewsHandler struct {
	aggregator    content.Aggregator
	snapshots     SnapshotLister
	snapshotLimit int
	logger        *log.Logger
}

// NewNewsHandler creates a new news handler. snapshots may be nil.
func NewNewsHandler(aggregator content.Aggregator, snapshots SnapshotLister, snapshotLimit int, logger *log.Logger) *NewsHandler {
	if snapshotLimit <= 0 {
		snapshotLimit = 10
	}
	return &NewsHandler{
		aggregator:    aggregator,
		snapshots:     snapshots,
		snapshotLimit: snapshotLimit,
		logger:        logger,
	}
}

type newsResponse struct {
	ID           string            `json:"id,omitempty"`
	Articles     []content.Item    `json:"articles"`
	TotalResults int               `json:"totalResults"`
	Location     string            `json:"location"`
	Analytics    content.Analytics `json:"analytics"`
	SearchTerms  []string          `json:"searchTerms"`
	Sources      []string          `json:"sources"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// GetNews aggregates, ranks and returns news for ?location=
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "Location parameter required")
		return
	}

	opts, err := parseNewsOptions(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), location, opts)
	if err != nil {
		if errors.Is(err, content.ErrMissingCredentials) {
			respondWithError(w, http.StatusInternalServerError, "News API key not configured")
			return
		}
		h.logger.Error("aggregation failed", "location", location, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}

	articles := result.Items
	if articles == nil {
		articles = []content.Item{}
	}

	respondWithJSON(w, http.StatusOK, newsResponse{
		ID:           result.ID,
		Articles:     articles,
		TotalResults: result.TotalResults(),
		Location:     result.Location,
		Analytics:    result.Analytics,
		SearchTerms:  nonNilStrings(result.SearchTermsUsed),
		Sources:      nonNilStrings(result.SourcesQueried),
		GeneratedAt:  result.GeneratedAt,
	})
}

// GetSnapshots returns recent persisted results for ?location=
func (h *NewsHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Snapshot storage not configured")
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "Location parameter required")
		return
	}

	limit, err := queryInt(r, "limit", h.snapshotLimit)
	if err != nil || limit <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if limit > h.snapshotLimit {
		limit = h.snapshotLimit
	}

	snaps, err := h.snapshots.RecentSnapshots(r.Context(), location, limit)
	if err != nil {
		h.logger.Error("failed to read snapshots", "location", location, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch snapshots")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"snapshots": snaps,
		"total":     len(snaps),
	})
}

func parseNewsOptions(r *http.Request) (content.Options, error) {
	q := r.URL.Query()
	var opts content.Options

	pageSize, err := queryInt(r, "pageSize", 0)
	if err != nil {
		return opts, errors.New("Invalid pageSize")
	}
	opts.PageSize = pageSize

	opts.Category = strings.ToLower(strings.TrimSpace(q.Get("category")))

	if raw := q.Get("sentiment"); raw != "" {
		sentiment := content.Sentiment(strings.ToLower(raw))
		if !sentiment.Valid() {
			return opts, errors.New("Invalid sentiment")
		}
		opts.Sentiment = sentiment
	}

	if raw := q.Get("minImpact"); raw != "" {
		minImpact, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.New("Invalid minImpact")
		}
		opts.MinImpact = &minImpact
	}

	return opts, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
