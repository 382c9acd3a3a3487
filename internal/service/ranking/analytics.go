// internal/service/ranking/analytics.go

package ranking

import (
	"locallens/internal/domain/content"
)

// Summarize computes the analytics block over the final item set. Means of
// an empty set are zero.
func Summarize(items []content.Item) content.Analytics {
	analytics := content.Analytics{
		Categories: make(map[string]int),
		Sentiment: map[content.Sentiment]int{
			content.SentimentPositive: 0,
			content.SentimentNegative: 0,
			content.SentimentNeutral:  0,
		},
	}

	if len(items) == 0 {
		return analytics
	}

	var totalImpact, totalRelevance float64
	for _, item := range items {
		for _, category := range item.Categories {
			analytics.Categories[category]++
		}
		if item.Sentiment != "" {
			analytics.Sentiment[item.Sentiment]++
		}
		totalImpact += item.ImpactScore
		totalRelevance += item.RelevanceScore
	}

	analytics.AverageImpact = totalImpact / float64(len(items))
	analytics.AverageRelevance = totalRelevance / float64(len(items))

	return analytics
}
