package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"locallens/internal/domain/content"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "no keywords", text: "Quiet afternoon", want: []string{content.CategoryGeneral}},
		{name: "multiple in rule order", text: "Police arrest suspect after downtown crash", want: []string{"crime", "traffic"}},
		{name: "case insensitive", text: "BREAKING news", want: []string{"breaking"}},
		{name: "weather", text: "Snow forecast for Tuesday", want: []string{"weather"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.text))
		})
	}
}

func TestDetectSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want content.Sentiment
	}{
		{name: "single positive hit stays neutral", text: "Great day", want: content.SentimentNeutral},
		{name: "single negative hit stays neutral", text: "House fire on Elm Street", want: content.SentimentNeutral},
		{name: "positive", text: "Community celebrates great success", want: content.SentimentPositive},
		{name: "negative", text: "Crash and fire leave two injured", want: content.SentimentNegative},
		{name: "tie", text: "Great rescue after terrible crash", want: content.SentimentNeutral},
		{name: "empty", text: "", want: content.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSentiment(tt.text))
		})
	}
}

func TestImpactScore(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		source    string
		published time.Time
		want      float64
	}{
		{name: "high tier wins over low", text: "house fire near sports complex", want: HighImpactBase},
		{name: "medium", text: "police investigate vandalism", want: MediumImpactBase},
		{name: "low", text: "summer concert lineup", want: LowImpactBase},
		{name: "none", text: "quiet afternoon", want: 0},
		{name: "authoritative source", text: "quiet afternoon", source: "Baltimore City Gov", want: AuthoritativeSourceBonus},
		{name: "fresh", text: "quiet afternoon", published: fixedNow.Add(-2 * time.Hour), want: 20},
		{name: "same day", text: "quiet afternoon", published: fixedNow.Add(-12 * time.Hour), want: 10},
		{name: "stale", text: "quiet afternoon", published: fixedNow.Add(-30 * time.Hour), want: 0},
		{
			name:      "everything",
			text:      "emergency evacuation ordered",
			source:    "City Official",
			published: fixedNow.Add(-time.Hour),
			want:      HighImpactBase + AuthoritativeSourceBonus + 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImpactScore(tt.text, tt.source, tt.published, fixedNow)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, MaxImpact)
		})
	}
}

func TestClassify(t *testing.T) {
	item := content.Item{
		Title:       "Breaking: fire at the harbor",
		Description: "Crews responded quickly",
		SourceName:  "WBAL",
		PublishedAt: fixedNow.Add(-2 * time.Hour),
	}

	got := Classify(item, fixedNow)

	assert.Equal(t, []string{"breaking"}, got.Categories)
	assert.Equal(t, content.SentimentNeutral, got.Sentiment)
	assert.InDelta(t, HighImpactBase+20, got.ImpactScore, 0.0001)

	// Pure function of its inputs
	assert.Equal(t, got, Classify(item, fixedNow))

	classifier := NewClassifierWithClock(func() time.Time { return fixedNow })
	assert.Equal(t, got, classifier.Classify(item))
}

func TestClassification_Apply(t *testing.T) {
	item := content.Item{Title: "Snow forecast"}
	Classify(item, fixedNow).Apply(&item)

	assert.Equal(t, []string{"weather"}, item.Categories)
	assert.Equal(t, content.SentimentNeutral, item.Sentiment)
	assert.True(t, item.HasCategory("weather"))
}

func TestCategories(t *testing.T) {
	names := Categories()
	assert.Len(t, names, len(categoryRules))
	assert.Equal(t, "breaking", names[0])
	assert.NotContains(t, names, content.CategoryGeneral)
}
