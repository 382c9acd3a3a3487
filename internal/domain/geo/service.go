// internal/domain/geo/service.go

package geo

import (
	"context"
	"regexp"
	"strings"
)

// LocationProfile is the search profile derived from a "City, State" string.
// It is built once per request and never mutated afterwards.
type LocationProfile struct {
	City       string
	State      string
	CityLower  string
	StateLower string
	Aliases    []string
	Metro      []string

	// aliasPatterns holds one word-boundary matcher per alias, in alias order
	aliasPatterns []*regexp.Regexp
}

// NewLocationProfile assembles a profile and compiles its alias matchers
func NewLocationProfile(city, state string, aliases, metro []string) LocationProfile {
	p := LocationProfile{
		City:       city,
		State:      state,
		CityLower:  strings.ToLower(strings.TrimSpace(city)),
		StateLower: strings.ToLower(strings.TrimSpace(state)),
		Aliases:    aliases,
		Metro:      metro,
	}
	p.aliasPatterns = compileAliases(aliases)
	return p
}

// AliasPatterns returns the compiled alias matchers, compiling on demand for
// profiles assembled as struct literals. Entries for empty aliases are nil.
func (p LocationProfile) AliasPatterns() []*regexp.Regexp {
	if len(p.aliasPatterns) == len(p.Aliases) {
		return p.aliasPatterns
	}
	return compileAliases(p.Aliases)
}

// HasState reports whether the location carried a state segment
func (p LocationProfile) HasState() bool {
	return p.StateLower != ""
}

func compileAliases(aliases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(aliases))
	for i, alias := range aliases {
		// An empty alias would match every word boundary
		if alias == "" {
			continue
		}
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
	}
	return patterns
}

// LocationContext provides address information for a coordinate or search hit
type LocationContext struct {
	PlaceID     string  `json:"placeId,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
}

// Geocoder resolves places to coordinates and back
type Geocoder interface {
	// Search returns candidate places matching a free-text query
	Search(ctx context.Context, query string) ([]LocationContext, error)

	// Reverse returns the place containing a coordinate
	Reverse(ctx context.Context, lat, lon float64) (*LocationContext, error)
}
