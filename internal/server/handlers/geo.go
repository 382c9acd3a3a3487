// internal/server/handlers/geo.go

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/domain/geo"
)

// GeoHandler handles geocoding HTTP requests
type GeoHandler struct {
	geocoder geo.Geocoder
	logger   *log.Logger
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(geocoder geo.Geocoder, logger *log.Logger) *GeoHandler {
	return &GeoHandler{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Search returns places matching ?q=. Upstream failures yield an empty list.
func (h *GeoHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	places, err := h.geocoder.Search(r.Context(), query)
	if err != nil {
		h.logger.Warn("geocode search failed", "query", query, "err", err)
		places = nil
	}
	if places == nil {
		places = []geo.LocationContext{}
	}

	respondWithJSON(w, http.StatusOK, places)
}

// Reverse returns the locality containing ?lat=&lon=. Upstream failures
// yield the bare coordinates.
func (h *GeoHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" || lonStr == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location parameters")
		return
	}

	// Parse coordinates
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid latitude")
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid longitude")
		return
	}

	place, err := h.geocoder.Reverse(r.Context(), lat, lon)
	if err != nil || place == nil {
		if err != nil {
			h.logger.Warn("reverse geocode failed", "lat", lat, "lon", lon, "err", err)
		}
		place = &geo.LocationContext{Latitude: lat, Longitude: lon}
	}

	respondWithJSON(w, http.StatusOK, place)
}
