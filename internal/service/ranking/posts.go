// internal/service/ranking/posts.go

package ranking

import (
	"math"
	"strings"
	"time"

	"locallens/internal/domain/content"
	geoService "locallens/internal/service/geo"
)

// cityNicknames are informal names residents use for a city
var cityNicknames = map[string][]string{
	"baltimore": {"charm city", "bmore", "balt"},
	"annapolis": {"naval academy", "usna"},
}

// localSubreddits are always considered on-topic
var localSubreddits = map[string]bool{
	"baltimore": true,
	"annapolis": true,
	"columbia":  true,
	"rockville": true,
}

// PostSearchTerms returns the lowercase terms that mark a post as mentioning location
func PostSearchTerms(location string) []string {
	city, state := geoService.SplitLocation(location)
	cityLower := strings.ToLower(city)

	candidates := []string{
		cityLower,
		strings.ToLower(state),
		strings.Join(strings.Fields(cityLower), ""),
	}
	candidates = append(candidates, cityNicknames[cityLower]...)
	if strings.Contains(location, "DC") {
		candidates = append(candidates, "washington", "dc", "dmv")
	}

	terms := candidates[:0]
	for _, t := range candidates {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// IsLocationRelevantPost reports whether a post mentions the location or
// comes from a highly local community
func IsLocationRelevantPost(post content.Post, location string) bool {
	text := strings.ToLower(post.Title + " " + post.SelfText)

	if containsAny(text, PostSearchTerms(location)) {
		return true
	}
	return localSubreddits[strings.ToLower(post.Subreddit)]
}

// ScorePost scores a discussion post for a location: place mentions,
// community match and age-normalized engagement
func ScorePost(post content.Post, location string, now time.Time) float64 {
	city, state := geoService.SplitLocation(location)
	cityLower := strings.ToLower(city)
	stateLower := strings.ToLower(state)

	text := strings.ToLower(post.Title + " " + post.SelfText)

	var score float64
	if cityLower != "" && strings.Contains(text, cityLower) {
		score += 10
	}
	if stateLower != "" && strings.Contains(text, stateLower) {
		score += 5
	}

	if sub := strings.ToLower(post.Subreddit); sub != "" && cityLower != "" {
		if sub == cityLower {
			score += 15
		}
		if strings.Contains(sub, cityLower) {
			score += 10
		}
	}

	ageHours := now.Sub(post.Created()).Hours()
	engagement := float64(post.Score+post.NumComments) / math.Max(ageHours, 1)
	score += engagement * 0.1

	return score
}
