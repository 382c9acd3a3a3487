// internal/service/ranking/classifier.go

package ranking

import (
	"math"
	"strings"
	"time"

	"locallens/internal/domain/content"
)

// Impact tier bases and bonuses
const (
	HighImpactBase           = 50.0
	MediumImpactBase         = 25.0
	LowImpactBase            = 10.0
	AuthoritativeSourceBonus = 15.0
	MaxImpact                = 100.0
)

// Classifier derives categories, sentiment and impact for news items
type Classifier struct {
	now func() time.Time
}

// NewClassifier creates a classifier that uses the wall clock
func NewClassifier() *Classifier {
	return &Classifier{now: time.Now}
}

// NewClassifierWithClock creates a classifier with an injected clock
func NewClassifierWithClock(now func() time.Time) *Classifier {
	return &Classifier{now: now}
}

// Classify classifies item at the classifier's current time
func (c *Classifier) Classify(item content.Item) content.Classification {
	return Classify(item, c.now())
}

// Classify derives the topic categories, sentiment label and impact score
// of a news item. It depends only on its arguments.
func Classify(item content.Item, now time.Time) content.Classification {
	text := strings.ToLower(item.Title + " " + item.Description)

	return content.Classification{
		Categories:  Categorize(text),
		Sentiment:   DetectSentiment(text),
		ImpactScore: ImpactScore(text, item.SourceName, item.PublishedAt, now),
	}
}

// Categorize returns every category with a keyword in text, or general
func Categorize(text string) []string {
	text = strings.ToLower(text)

	var categories []string
	for _, rule := range categoryRules {
		if containsAny(text, rule.Keywords) {
			categories = append(categories, rule.Name)
		}
	}

	if len(categories) == 0 {
		return []string{content.CategoryGeneral}
	}
	return categories
}

// DetectSentiment labels text by comparing positive and negative word hits.
// A side needs more than one hit to win.
func DetectSentiment(text string) content.Sentiment {
	text = strings.ToLower(text)

	positive := countOccurrences(text, positiveWords)
	negative := countOccurrences(text, negativeWords)

	switch {
	case positive > negative && positive > 1:
		return content.SentimentPositive
	case negative > positive && negative > 1:
		return content.SentimentNegative
	default:
		return content.SentimentNeutral
	}
}

// ImpactScore estimates civic urgency on a 0-100 scale
func ImpactScore(text, sourceName string, published, now time.Time) float64 {
	text = strings.ToLower(text)

	var score float64
	switch {
	case containsAny(text, highImpactKeywords):
		score = HighImpactBase
	case containsAny(text, mediumImpactKeywords):
		score = MediumImpactBase
	case containsAny(text, lowImpactKeywords):
		score = LowImpactBase
	}

	if containsAny(strings.ToLower(sourceName), authoritativeSourceMarkers) {
		score += AuthoritativeSourceBonus
	}

	// Recency tiers are exclusive here
	if !published.IsZero() {
		hoursOld := now.Sub(published).Hours()
		if hoursOld < 6 {
			score += 20
		} else if hoursOld < 24 {
			score += 10
		}
	}

	return math.Max(0, math.Min(MaxImpact, score))
}

// Helper function to sum substring occurrences of every word
func countOccurrences(text string, words []string) int {
	total := 0
	for _, w := range words {
		total += strings.Count(text, w)
	}
	return total
}
