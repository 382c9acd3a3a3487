package content

import (
	"context"
	"encoding/json"
)

// DefaultEventName replaces missing event names
const DefaultEventName = "Untitled Event"

// EventMoment is one end of an event's schedule
type EventMoment struct {
	DateTime  string `json:"dateTime,omitempty"`
	LocalDate string `json:"localDate,omitempty"`
	LocalTime string `json:"localTime,omitempty"`
}

// EventDates is the event schedule
type EventDates struct {
	Start    EventMoment `json:"start"`
	End      EventMoment `json:"end"`
	Timezone string      `json:"timezone"`
}

// EventEmbedded carries the venues the event takes place at
type EventEmbedded struct {
	Venues []json.RawMessage `json:"venues"`
}

// Event is a normalized events-API record. Venue, image, classification and
// price payloads pass through unchanged.
type Event struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Info            string            `json:"info"`
	URL             string            `json:"url"`
	Dates           EventDates        `json:"dates"`
	Embedded        EventEmbedded     `json:"_embedded"`
	Images          []json.RawMessage `json:"images"`
	Classifications []json.RawMessage `json:"classifications"`
	PriceRanges     []json.RawMessage `json:"priceRanges"`
}

// EventQuery selects events near a location
type EventQuery struct {
	City      string
	StateCode string
	Radius    int
	PageSize  int
	Category  string
}

// EventsResult is one page of events
type EventsResult struct {
	Events       []Event `json:"events"`
	TotalResults int     `json:"totalResults"`
	Location     string  `json:"location"`
}

// EventFinder searches upcoming events
type EventFinder interface {
	FindEvents(ctx context.Context, q EventQuery) (*EventsResult, error)
}
