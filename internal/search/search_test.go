package search

import (
	"testing"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/stretchr/testify/require"
)

func sampleItems() []domain.MediaItem {
	return []domain.MediaItem{
		{ID: "1", Title: "Harbor at Dawn", CategoryName: "Seascape"},
		{ID: "2", Title: "Desert Dunes", CategoryName: "Landscape"},
		{ID: "3", Title: "Dawn Patrol", CategoryName: "Street"},
		{ID: "4", Title: "", CategoryName: "Street"},
	}
}

func TestFilterItemsMatchesTitles(t *testing.T) {
	results := FilterItems("dawn", sampleItems())
	require.Len(t, results, 2)

	found := map[string]int{}
	for _, r := range results {
		found[r.Item.ID] = r.Index
		require.NotEmpty(t, r.MatchedIndexes)
	}
	require.Equal(t, map[string]int{"1": 0, "3": 2}, found)
}

func TestFilterItemsMatchesCategoryAndFallbackTitle(t *testing.T) {
	results := FilterItems("street", sampleItems())

	var ids []string
	for _, r := range results {
		ids = append(ids, r.Item.ID)
	}
	require.ElementsMatch(t, []string{"3", "4"}, ids)
}

func TestFilterItemsEmptyQuery(t *testing.T) {
	require.Nil(t, FilterItems("   ", sampleItems()))
	require.Nil(t, FilterItems("x", nil))
}

func TestFilterIndexIsCaseInsensitive(t *testing.T) {
	idx := NewFilterIndex(sampleItems())
	require.Equal(t, 4, idx.Len())
	require.Equal(t, "harbor at dawn seascape", idx.String(0))
	require.Len(t, idx.Filter("HARBOR"), 1)
}

func TestMatchCategory(t *testing.T) {
	categories := []domain.Category{
		{ID: "1", Name: "Street", Slug: "street"},
		{ID: "2", Name: "Portraits", Slug: "portraits"},
		{ID: "3", Name: "Landscape", Slug: "landscape"},
	}

	matches := MatchCategory("port", categories)
	require.NotEmpty(t, matches)
	require.Equal(t, "2", matches[0].ID)

	best, ok := BestCategory("LNDSCP", categories)
	require.True(t, ok)
	require.Equal(t, "3", best.ID)

	_, ok = BestCategory("zzz", categories)
	require.False(t, ok)
	require.Nil(t, MatchCategory("", categories))
}
