// internal/service/ranking/dedupe.go

package ranking

import (
	"regexp"
	"sort"
	"strings"

	"locallens/internal/domain/content"
)

// titleKeyLength is how much of the normalized title identifies a story
const titleKeyLength = 50

var nonTitleChars = regexp.MustCompile(`[^a-z0-9\s]`)

// TitleKey normalizes a title for duplicate detection: lowercase, strip
// everything but ASCII letters, digits and whitespace, keep the first 50 characters.
func TitleKey(title string) string {
	key := nonTitleChars.ReplaceAllString(strings.ToLower(title), "")
	runes := []rune(key)
	if len(runes) > titleKeyLength {
		runes = runes[:titleKeyLength]
	}
	return string(runes)
}

// Dedupe walks items in order and keeps those whose URL and title key are
// both unseen. Items without a URL are dropped. It stops as soon as limit
// items are kept.
func Dedupe(items []content.Item, limit int) []content.Item {
	if limit <= 0 {
		return []content.Item{}
	}

	unique := make([]content.Item, 0, min(limit, len(items)))
	seenURLs := make(map[string]struct{})
	seenTitles := make(map[string]struct{})

	for _, item := range items {
		if item.URL == "" {
			continue
		}
		if _, ok := seenURLs[item.URL]; ok {
			continue
		}

		titleKey := TitleKey(item.Title)
		if _, ok := seenTitles[titleKey]; ok {
			continue
		}

		seenURLs[item.URL] = struct{}{}
		seenTitles[titleKey] = struct{}{}
		unique = append(unique, item)

		if len(unique) >= limit {
			break
		}
	}

	return unique
}

// SortByRank orders items by relevance, then impact, both descending.
// Equal items keep their input order.
func SortByRank(items []content.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RelevanceScore != items[j].RelevanceScore {
			return items[i].RelevanceScore > items[j].RelevanceScore
		}
		return items[i].ImpactScore > items[j].ImpactScore
	})
}
