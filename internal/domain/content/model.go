// internal/domain/content/model.go

package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sentiment is the tone label assigned to a news item
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the known sentiment labels
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// CategoryGeneral is assigned when no category keyword matches
const CategoryGeneral = "general"

// Kind identifies the upstream family an item came from
type Kind string

const (
	KindNews  Kind = "news"
	KindPost  Kind = "post"
	KindEvent Kind = "event"
)

// Item is a post, article or event reduced to the fields the ranking core reads
type Item struct {
	Kind        Kind      `json:"kind,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"urlToImage,omitempty"`
	PublishedAt time.Time `json:"-"` // zero when unknown
	SourceName  string    `json:"-"`

	// Derived by the pipeline
	RelevanceScore float64   `json:"relevanceScore"`
	Categories     []string  `json:"categories,omitempty"`
	Sentiment      Sentiment `json:"sentiment,omitempty"`
	ImpactScore    float64   `json:"impactScore"`
}

// ItemSource is the wire form of an item's outlet
type ItemSource struct {
	Name string `json:"name"`
}

type itemAlias Item

// MarshalJSON writes the outlet as source.name and omits an unknown publishedAt
func (i Item) MarshalJSON() ([]byte, error) {
	out := struct {
		itemAlias
		PublishedAt *time.Time  `json:"publishedAt,omitempty"`
		Source      *ItemSource `json:"source,omitempty"`
	}{itemAlias: itemAlias(i)}

	if !i.PublishedAt.IsZero() {
		published := i.PublishedAt
		out.PublishedAt = &published
	}
	if i.SourceName != "" {
		out.Source = &ItemSource{Name: i.SourceName}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON
func (i *Item) UnmarshalJSON(data []byte) error {
	var in struct {
		itemAlias
		PublishedAt *time.Time  `json:"publishedAt"`
		Source      *ItemSource `json:"source"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*i = Item(in.itemAlias)
	if in.PublishedAt != nil {
		i.PublishedAt = *in.PublishedAt
	}
	if in.Source != nil {
		i.SourceName = in.Source.Name
	}
	return nil
}

// Classification is the output of the content classifier
type Classification struct {
	Categories  []string
	Sentiment   Sentiment
	ImpactScore float64
}

// Apply copies the classification onto an item
func (c Classification) Apply(item *Item) {
	item.Categories = append([]string(nil), c.Categories...)
	item.Sentiment = c.Sentiment
	item.ImpactScore = c.ImpactScore
}

// HasCategory reports whether the item was tagged with category
func (i Item) HasCategory(category string) bool {
	for _, c := range i.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Options are the caller-supplied aggregation parameters
type Options struct {
	PageSize  int
	Category  string
	Sentiment Sentiment
	MinImpact *float64
}

// Analytics summarises the final item set of an aggregation
type Analytics struct {
	Categories       map[string]int    `json:"categories"`
	Sentiment        map[Sentiment]int `json:"sentiment"`
	AverageImpact    float64           `json:"averageImpact"`
	AverageRelevance float64           `json:"averageRelevance"`
}

// Result is the output of one aggregation run
type Result struct {
	ID              string    `json:"id,omitempty"`
	Location        string    `json:"location"`
	Items           []Item    `json:"articles"`
	Analytics       Analytics `json:"analytics"`
	SearchTermsUsed []string  `json:"searchTerms"`
	SourcesQueried  []string  `json:"sources"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// TotalResults mirrors the number of returned items
func (r Result) TotalResults() int {
	return len(r.Items)
}

// Snapshot is a persisted aggregation result
type Snapshot struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
	Result    Result    `json:"result"`
}

// Common errors
var (
	// ErrMissingCredentials is returned when an upstream API key is not configured
	ErrMissingCredentials = errors.New("upstream credentials not configured")

	// ErrSourceNotFound is returned when an upstream reports the requested source does not exist
	ErrSourceNotFound = errors.New("source not found")

	// ErrUpstream wraps any other non-2xx upstream response
	ErrUpstream = errors.New("upstream request failed")
)

// StatusError is a non-2xx upstream response. It matches ErrUpstream.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d", e.Upstream, e.StatusCode)
}

// Unwrap lets errors.Is match ErrUpstream
func (e *StatusError) Unwrap() error {
	return ErrUpstream
}
