// internal/adapter/ticketmaster/client.go

package ticketmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"locallens/internal/config"
	"locallens/internal/domain/content"
	"locallens/internal/metrics"
)

const upstreamName = "ticketmaster"

// Client queries the Ticketmaster Discovery API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

type rawMoment struct {
	DateTime  string `json:"dateTime"`
	LocalDate string `json:"localDate"`
	LocalTime string `json:"localTime"`
}

type rawEvent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Info       string `json:"info"`
	PleaseNote string `json:"pleaseNote"`
	URL        string `json:"url"`
	Dates      struct {
		Start    rawMoment `json:"start"`
		End      rawMoment `json:"end"`
		Timezone string    `json:"timezone"`
	} `json:"dates"`
	Embedded struct {
		Venues []json.RawMessage `json:"venues"`
	} `json:"_embedded"`
	Images          []json.RawMessage `json:"images"`
	Classifications []json.RawMessage `json:"classifications"`
	PriceRanges     []json.RawMessage `json:"priceRanges"`
}

type discoveryResponse struct {
	Embedded struct {
		Events []rawEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalElements int `json:"totalElements"`
	} `json:"page"`
}

// NewClient creates a new Discovery API client
func NewClient(cfg config.EventsConfig, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.WithPrefix(upstreamName),
	}
}

// FindEvents returns upcoming events near a city, soonest first
func (c *Client) FindEvents(ctx context.Context, q content.EventQuery) (*content.EventsResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("ticketmaster api key: %w", content.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("city", q.City)
	if q.StateCode != "" {
		params.Set("stateCode", q.StateCode)
	}
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("unit", "miles")
	params.Set("size", strconv.Itoa(q.PageSize))
	params.Set("sort", "date,asc")
	if q.Category != "" {
		params.Set("classificationName", q.Category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: ticketmaster: %v", content.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &content.StatusError{Upstream: upstreamName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data discoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.RecordUpstream(upstreamName, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to decode ticketmaster response: %w", err)
	}
	metrics.RecordUpstream(upstreamName, metrics.OutcomeOK)

	events := make([]content.Event, 0, len(data.Embedded.Events))
	for _, raw := range data.Embedded.Events {
		events = append(events, normalize(raw))
	}

	total := data.Page.TotalElements
	if total == 0 {
		total = len(events)
	}

	c.logger.Debug("found events", "city", q.City, "events", len(events), "total", total)
	return &content.EventsResult{
		Events:       events,
		TotalResults: total,
	}, nil
}

func normalize(raw rawEvent) content.Event {
	event := content.Event{
		ID:   raw.ID,
		Name: raw.Name,
		Info: raw.Info,
		URL:  raw.URL,
		Dates: content.EventDates{
			Start:    content.EventMoment(raw.Dates.Start),
			End:      content.EventMoment(raw.Dates.End),
			Timezone: raw.Dates.Timezone,
		},
		Embedded:        content.EventEmbedded{Venues: nonNil(raw.Embedded.Venues)},
		Images:          nonNil(raw.Images),
		Classifications: nonNil(raw.Classifications),
		PriceRanges:     nonNil(raw.PriceRanges),
	}

	if event.Name == "" {
		event.Name = content.DefaultEventName
	}
	if event.Info == "" {
		event.Info = raw.PleaseNote
	}
	if event.Dates.Timezone == "" {
		event.Dates.Timezone = "UTC"
	}

	return event
}

// nonNil keeps absent arrays serialized as [] rather than null
func nonNil(v []json.RawMessage) []json.RawMessage {
	if v == nil {
		return []json.RawMessage{}
	}
	return v
}
