// internal/adapter/nominatim/geocoder.go

package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/domain/geo"
	"locallens/internal/metrics"
)

const upstreamName = "nominatim"

// Search tuning
const (
	minQueryLength = 3
	searchLimit    = 5
	reverseZoom    = 10
)

// Geocoder resolves places with the OpenStreetMap Nominatim API
type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

// address is the subset of addressdetails we read
type address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// locality returns the most specific populated place name
func (a address) locality() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	default:
		return a.Village
	}
}

type place struct {
	PlaceID     json.Number `json:"place_id"`
	DisplayName string      `json:"display_name"`
	Lat         string      `json:"lat"`
	Lon         string      `json:"lon"`
	Address     address     `json:"address"`
}

// NewGeocoder creates a new Nominatim geocoder
func NewGeocoder(cfg config.GeoConfig, logger *log.Logger) *Geocoder {
	return &Geocoder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent:  cfg.UserAgent,
		logger:     logger.WithPrefix(upstreamName),
	}
}

// Search returns up to five places for a free-text query. Queries shorter
// than three characters return no results without calling the API.
func (g *Geocoder) Search(ctx context.Context, query string) ([]geo.LocationContext, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return []geo.LocationContext{}, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("addressdetails", "1")

	var places []place
	if err := g.get(ctx, "/search", params, &places); err != nil {
		return nil, err
	}

	results := make([]geo.LocationContext, 0, len(places))
	for _, p := range places {
		results = append(results, p.toContext())
	}
	return results, nil
}

// Reverse resolves coordinates to the enclosing locality
func (g *Geocoder) Reverse(ctx context.Context, lat, lon float64) (*geo.LocationContext, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", strconv.Itoa(reverseZoom))
	params.Set("addressdetails", "1")

	var p place
	if err := g.get(ctx, "/reverse", params, &p); err != nil {
		return nil, err
	}

	result := p.toContext()
	// Echo the requested point rather than the matched feature's centroid
	result.Latitude = lat
	result.Longitude = lon
	return &result, nil
}

func (g *Geocoder) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Nominatim's usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return fmt.Errorf("%w: nominatim: %v", content.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return fmt.Errorf("%w: nominatim status %d", content.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	metrics.RecordUpstream(upstreamName, metrics.OutcomeOK)
	return nil
}

func (p place) toContext() geo.LocationContext {
	lat, _ := strconv.ParseFloat(p.Lat, 64)
	lon, _ := strconv.ParseFloat(p.Lon, 64)

	return geo.LocationContext{
		PlaceID:     p.PlaceID.String(),
		Latitude:    lat,
		Longitude:   lon,
		City:        p.Address.locality(),
		State:       p.Address.State,
		Country:     p.Address.Country,
		DisplayName: p.DisplayName,
	}
}
