// internal/server/handlers/events.go

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/domain/content"
	geoService "locallens/internal/service/geo"
)

// EventsHandler serves upcoming local events
type EventsHandler struct {
	finder          content.EventFinder
	defaultRadius   int
	defaultPageSize int
	logger          *log.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(finder content.EventFinder, defaultRadius, defaultPageSize int, logger *log.Logger) *EventsHandler {
	return &EventsHandler{
		finder:          finder,
		defaultRadius:   defaultRadius,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

// GetEvents returns events near ?location= ("City, ST")
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "Location parameter required")
		return
	}

	pageSize, err := queryInt(r, "pageSize", h.defaultPageSize)
	if err != nil || pageSize <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid pageSize")
		return
	}

	radius, err := queryInt(r, "radius", h.defaultRadius)
	if err != nil || radius <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid radius")
		return
	}

	city, state := geoService.SplitLocation(location)

	result, err := h.finder.FindEvents(r.Context(), content.EventQuery{
		City:      city,
		StateCode: strings.ToUpper(state),
		Radius:    radius,
		PageSize:  pageSize,
		Category:  r.URL.Query().Get("category"),
	})
	if err != nil {
		var statusErr *content.StatusError
		switch {
		case errors.Is(err, content.ErrMissingCredentials):
			respondWithError(w, http.StatusInternalServerError, "Ticketmaster API key not configured")
		case errors.As(err, &statusErr):
			respondWithJSON(w, statusErr.StatusCode, map[string]string{
				"error":   "Ticketmaster API error",
				"details": statusErr.Body,
			})
		default:
			h.logger.Error("event search failed", "location", location, "err", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch events")
		}
		return
	}

	result.Location = location
	if result.Events == nil {
		result.Events = []content.Event{}
	}

	respondWithJSON(w, http.StatusOK, result)
}
