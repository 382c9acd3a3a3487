// internal/service/ranking/relevance.go

package ranking

import (
	"strings"
	"time"

	"locallens/internal/domain/content"
	"locallens/internal/domain/geo"
)

// Relevance points. The values are empirical and kept for compatibility
// with existing feeds.
const (
	TitleMatchPoints       = 15.0
	DescriptionMatchPoints = 8.0
	LocalSourceBonus       = 10.0
	GeoIndicatorPoints     = 5.0
)

// Default relevance thresholds applied by the aggregation pipeline
const (
	DefaultMinRelevance        = 3.0
	DefaultMinCuratedRelevance = 5.0
)

// localSourceMarkers identify outlets that are usually regional
var localSourceMarkers = []string{"local", "herald", "tribune", "gazette"}

// geoIndicators are phrases that mark civic, place-bound reporting
var geoIndicators = []string{
	"mayor",
	"city council",
	"county",
	"sheriff",
	"school district",
	"downtown",
	"police department",
}

// Scorer scores items against a location profile using a fixed clock source
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer that uses the wall clock
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock creates a scorer with an injected clock
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score returns the relevance of item to profile
func (s *Scorer) Score(item content.Item, profile geo.LocationProfile) float64 {
	return ScoreRelevance(item, profile, s.now())
}

// ScoreRelevance computes the additive local-relevance score of an item.
// Every rule contributes independently; the result is never negative.
func ScoreRelevance(item content.Item, profile geo.LocationProfile, now time.Time) float64 {
	var score float64

	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)

	// Whole-word alias mentions, title weighted above description
	for _, pattern := range profile.AliasPatterns() {
		if pattern == nil {
			continue
		}
		titleMatches := len(pattern.FindAllStringIndex(title, -1))
		descMatches := len(pattern.FindAllStringIndex(description, -1))

		score += float64(titleMatches) * TitleMatchPoints
		score += float64(descMatches) * DescriptionMatchPoints
	}

	// Regional outlets
	if containsAny(strings.ToLower(item.SourceName), localSourceMarkers) {
		score += LocalSourceBonus
	}

	// Presence of each geographic indicator
	text := title + " " + description
	for _, indicator := range geoIndicators {
		if strings.Contains(text, indicator) {
			score += GeoIndicatorPoints
		}
	}

	score += relevanceRecencyBonus(item.PublishedAt, now)

	return score
}

// relevanceRecencyBonus stacks: under 6 hours earns all three tiers
func relevanceRecencyBonus(published, now time.Time) float64 {
	if published.IsZero() {
		return 0
	}

	hoursOld := now.Sub(published).Hours()

	var bonus float64
	if hoursOld < 24 {
		bonus += 8
	}
	if hoursOld < 12 {
		bonus += 5
	}
	if hoursOld < 6 {
		bonus += 3
	}
	return bonus
}

// Helper function to check if text contains any of the given substrings
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
