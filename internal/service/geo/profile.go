// internal/service/geo/profile.go

package geo

import (
	"fmt"
	"strings"

	"locallens/internal/domain/geo"
)

// majorCities get metro-area search terms
var majorCities = map[string]bool{
	"new york":     true,
	"los angeles":  true,
	"chicago":      true,
	"houston":      true,
	"phoenix":      true,
	"philadelphia": true,
	"san antonio":  true,
	"san diego":    true,
	"dallas":       true,
	"san jose":     true,
}

// prefixRule rewrites a leading word of a city name into its abbreviations
type prefixRule struct {
	prefix       string
	replacements []string
}

var prefixRules = []prefixRule{
	{prefix: "saint ", replacements: []string{"st. ", "st "}},
	{prefix: "fort ", replacements: []string{"ft. ", "ft "}},
	{prefix: "mount ", replacements: []string{"mt. ", "mt "}},
}

// SplitLocation splits "City, State" into its trimmed parts. The state is the
// text between the first and second comma and is empty when absent.
func SplitLocation(location string) (city, state string) {
	parts := strings.Split(location, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}

// BuildProfile derives the alias and metro search profile for a location.
// It never fails: malformed input yields a profile for whatever city text is present.
func BuildProfile(location string) geo.LocationProfile {
	city, state := SplitLocation(location)
	cityLower := strings.ToLower(city)
	stateLower := strings.ToLower(state)

	aliases := []string{cityLower}

	// Each rule is checked independently
	if strings.HasSuffix(cityLower, "ville") {
		aliases = append(aliases, strings.TrimSuffix(cityLower, "ville"))
	}
	for _, rule := range prefixRules {
		if !strings.HasPrefix(cityLower, rule.prefix) {
			continue
		}
		rest := strings.TrimPrefix(cityLower, rule.prefix)
		for _, replacement := range rule.replacements {
			aliases = append(aliases, replacement+rest)
		}
	}

	var metro []string
	if majorCities[cityLower] {
		metro = []string{
			fmt.Sprintf("%s metro", cityLower),
			fmt.Sprintf("%s area", cityLower),
			fmt.Sprintf("greater %s", cityLower),
		}
	}

	aliases = append(aliases, fmt.Sprintf("%s county", cityLower))

	if stateLower != "" {
		aliases = append(aliases, fmt.Sprintf("%s %s", cityLower, stateLower))
		aliases = append(aliases, fmt.Sprintf("%s, %s", cityLower, stateLower))
	}

	return geo.NewLocationProfile(city, state, aliases, metro)
}

// SearchQueries returns up to limit news search queries for a profile, in
// priority order.
func SearchQueries(profile geo.LocationProfile, limit int) []string {
	city, state := profile.City, profile.State

	var queries []string
	if profile.HasState() {
		queries = append(queries, fmt.Sprintf(`"%s" "%s" news`, city, state))
	} else {
		queries = append(queries, fmt.Sprintf(`"%s" news`, city))
	}
	queries = append(queries,
		fmt.Sprintf(`"%s" local news`, city),
		fmt.Sprintf(`"%s" breaking news`, city),
		strings.TrimSpace(city+" "+state),
		fmt.Sprintf(`"%s" weather`, city),
		fmt.Sprintf(`"%s" traffic`, city),
		fmt.Sprintf(`"%s" government`, city),
		fmt.Sprintf(`"%s" police`, city),
		fmt.Sprintf(`"%s" school district`, city),
	)

	for _, m := range profile.Metro {
		queries = append(queries, fmt.Sprintf(`"%s" news`, m))
	}

	aliases := profile.Aliases
	if len(aliases) > 3 {
		aliases = aliases[:3]
	}
	for _, alias := range aliases {
		queries = append(queries, fmt.Sprintf(`"%s" news`, alias))
	}

	if limit >= 0 && len(queries) > limit {
		queries = queries[:limit]
	}
	return queries
}
