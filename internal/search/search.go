package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/folio/internal/domain"
)

// FilterResult is one loaded item matching a local filter
type FilterResult struct {
	Item           domain.MediaItem
	Index          int   // Position in the gallery list
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int   // Higher is better
}

// FilterIndex implements sahilm/fuzzy.Source over item titles
type FilterIndex struct {
	items       []domain.MediaItem
	lowerTitles []string // Pre-computed lowercase titles
}

// NewFilterIndex indexes the searchable text of items
func NewFilterIndex(items []domain.MediaItem) *FilterIndex {
	idx := &FilterIndex{
		items:       items,
		lowerTitles: make([]string, len(items)),
	}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(searchText(item))
	}
	return idx
}

// String returns the lowercase text at index i (implements fuzzy.Source)
func (idx *FilterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *FilterIndex) Len() int { return len(idx.items) }

// Filter returns matches for query, best first. Ties keep list order.
func (idx *FilterIndex) Filter(query string) []FilterResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || idx.Len() == 0 {
		return nil
	}

	matches := sfuzzy.FindFrom(query, idx)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Item:           idx.items[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// FilterItems is a one-shot Filter over items
func FilterItems(query string, items []domain.MediaItem) []FilterResult {
	return NewFilterIndex(items).Filter(query)
}

// searchText is the title plus category, so "street" finds items filed
// under a Street category
func searchText(item domain.MediaItem) string {
	text := item.GetTitle()
	if item.CategoryName != "" {
		text += " " + item.CategoryName
	}
	return text
}

// MatchCategory ranks categories whose name or slug fuzzily contains query.
// Closest matches come first.
func MatchCategory(query string, categories []domain.Category) []domain.Category {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name + " " + c.Slug
	}

	ranks := fuzzy.RankFindFold(query, names)
	sort.Sort(ranks)

	results := make([]domain.Category, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, categories[r.OriginalIndex])
	}
	return results
}

// BestCategory returns the closest category match, if any
func BestCategory(query string, categories []domain.Category) (domain.Category, bool) {
	matches := MatchCategory(query, categories)
	if len(matches) == 0 {
		return domain.Category{}, false
	}
	return matches[0], true
}
