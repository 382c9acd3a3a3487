// internal/service/geo/sources.go

package geo

import (
	"strings"
)

// nationalSources have local coverage everywhere
var nationalSources = []string{"abc-news", "cbs-news", "nbc-news", "cnn", "fox-news"}

// stateSources maps a lowercase state name or USPS code to regional outlets
var stateSources = map[string][]string{
	"maryland":     {"the-baltimore-sun"},
	"md":           {"the-baltimore-sun"},
	"virginia":     {"the-washington-post"},
	"va":           {"the-washington-post"},
	"dc":           {"the-washington-post"},
	"california":   {"los-angeles-times"},
	"ca":           {"los-angeles-times"},
	"new york":     {"the-new-york-times"},
	"ny":           {"the-new-york-times"},
	"florida":      {"miami-herald"},
	"fl":           {"miami-herald"},
	"texas":        {"the-dallas-morning-news"},
	"tx":           {"the-dallas-morning-news"},
	"illinois":     {"chicago-tribune"},
	"il":           {"chicago-tribune"},
	"pennsylvania": {"the-philadelphia-inquirer"},
	"pa":           {"the-philadelphia-inquirer"},
}

// defaultSubreddits is used for locations missing from the subreddit table
var defaultSubreddits = []string{"baltimore", "maryland"}

// locationSubreddits maps "city, st" (lowercase) to the communities covering it
var locationSubreddits = map[string][]string{
	// Baltimore metro
	"baltimore, md":   {"baltimore", "maryland", "charm_city"},
	"towson, md":      {"towson", "baltimore", "maryland"},
	"dundalk, md":     {"dundalk", "baltimore", "maryland"},
	"catonsville, md": {"catonsville", "baltimore", "maryland"},
	"essex, md":       {"essex", "baltimore", "maryland"},

	// Anne Arundel County
	"annapolis, md":    {"annapolis", "maryland", "annearndelcounty"},
	"glen burnie, md":  {"glenburnie", "maryland", "annearndelcounty"},
	"severna park, md": {"severnapark", "maryland", "annearndelcounty"},
	"arnold, md":       {"arnold", "maryland", "annearndelcounty"},

	// Howard County
	"columbia, md":      {"columbia", "maryland", "howardcounty"},
	"ellicott city, md": {"ellicottcity", "maryland", "howardcounty"},

	// Montgomery County
	"rockville, md":     {"rockville", "maryland", "montgomerycounty"},
	"gaithersburg, md":  {"gaithersburg", "maryland", "montgomerycounty"},
	"silver spring, md": {"silverspring", "maryland", "montgomerycounty"},
	"bethesda, md":      {"bethesda", "maryland", "montgomerycounty"},
	"germantown, md":    {"germantown", "maryland", "montgomerycounty"},
	"chevy chase, md":   {"chevychase", "maryland", "montgomerycounty"},
	"takoma park, md":   {"takomapark", "maryland", "montgomerycounty"},

	// Prince George's County
	"bowie, md":          {"bowie", "maryland", "princegeorgescounty"},
	"college park, md":   {"collegepark", "maryland", "princegeorgescounty"},
	"greenbelt, md":      {"greenbelt", "maryland", "princegeorgescounty"},
	"hyattsville, md":    {"hyattsville", "maryland", "princegeorgescounty"},
	"laurel, md":         {"laurel", "maryland", "princegeorgescounty"},
	"upper marlboro, md": {"uppermarlboro", "maryland", "princegeorgescounty"},

	// Western and central Maryland
	"frederick, md":   {"frederick", "maryland", "frederickcounty"},
	"hagerstown, md":  {"hagerstown", "maryland", "washingtoncounty"},
	"cumberland, md":  {"cumberland", "maryland", "alleganycounty"},
	"westminster, md": {"westminster", "maryland", "carrollcounty"},

	// Southern Maryland
	"waldorf, md":          {"waldorf", "maryland", "charlescounty"},
	"la plata, md":         {"laplata", "maryland", "charlescounty"},
	"prince frederick, md": {"princefrederick", "maryland", "calvertcounty"},
	"lexington park, md":   {"lexingtonpark", "maryland", "stmaryscounty"},

	// Harford and Cecil
	"bel air, md":  {"belair", "maryland", "harfordcounty"},
	"aberdeen, md": {"aberdeen", "maryland", "harfordcounty"},
	"elkton, md":   {"elkton", "maryland", "cecilcounty"},

	// Eastern Shore
	"salisbury, md":  {"salisbury", "maryland", "wicomico"},
	"ocean city, md": {"oceancity", "maryland", "easternshore"},
	"cambridge, md":  {"cambridge", "maryland", "easternshore"},
	"easton, md":     {"easton", "maryland", "easternshore"},

	// Northern Virginia
	"arlington, va":  {"arlington", "virginia", "dmv"},
	"alexandria, va": {"alexandria", "virginia", "dmv"},
	"fairfax, va":    {"fairfax", "virginia", "dmv"},
	"vienna, va":     {"vienna", "virginia", "dmv"},
	"mclean, va":     {"mclean", "virginia", "dmv"},

	// Washington DC
	"washington, dc": {"washingtondc", "dmv", "dc"},
}

// CuratedSources returns the regional outlets for a state followed by the
// national outlets.
func CuratedSources(stateLower string) []string {
	regional := stateSources[strings.ToLower(strings.TrimSpace(stateLower))]

	sources := make([]string, 0, len(regional)+len(nationalSources))
	sources = append(sources, regional...)
	sources = append(sources, nationalSources...)
	return sources
}

// SubredditsForLocation returns the discussion communities for a location
func SubredditsForLocation(location string) []string {
	city, state := SplitLocation(location)
	key := strings.ToLower(city)
	if state != "" {
		key += ", " + strings.ToLower(state)
	}

	subs, ok := locationSubreddits[key]
	if !ok {
		subs = defaultSubreddits
	}

	// Create a copy so callers cannot mutate the table
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}
