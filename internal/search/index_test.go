package search

import (
	"testing"

	"atlas/internal/viewer"

	"github.com/stretchr/testify/assert"
)

func names(es []viewer.CorpusEntry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name)
	}
	return out
}

func corpus() []viewer.CorpusEntry {
	return []viewer.CorpusEntry{
		{Name: "Winterfell", Type: "Castle", ID: 1},
		{Name: "The Twins", Type: "Castle", ID: 2},
		{Name: "Castle Black", Type: "Castle", ID: 3},
		{Name: "The North", Type: viewer.KingdomType, ID: 10},
		{Name: "The Neck", Type: viewer.KingdomType, ID: 11},
		{Name: "Winterfell", Type: "Town", ID: 4},
	}
}

func TestSearchRanksPrefixBeforeSubstring(t *testing.T) {
	x := NewIndex(corpus())
	assert.Equal(t, 6, x.Len())
	assert.Equal(t, []string{"Castle Black"}, names(x.Search("castle", 0)))
	assert.Equal(t, []string{"The Neck", "The Twins", "The North"}, names(x.Search("THE", 0)))
	assert.Equal(t, []string{"The Neck", "The Twins"}, names(x.Search("t", 2)))
}

func TestSearchKeepsCorpusOrderOnTies(t *testing.T) {
	x := NewIndex(corpus())
	got := x.Search("winterfell", 5)
	if assert.Len(t, got, 2) {
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(4), got[1].ID)
	}
}

func TestSearchLimitAndEmpty(t *testing.T) {
	x := NewIndex(corpus())
	assert.Len(t, x.Search("e", 2), 2)
	assert.Nil(t, x.Search("   ", 5))
	assert.Empty(t, x.Search("dragonstone", 5))

	var s viewer.Searcher = New(nil)
	assert.Empty(t, s.Search("x", 1))
}
