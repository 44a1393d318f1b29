package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountBy_FirstOccurrenceOrder(t *testing.T) {
	got := CountBy([]string{"b", "a", "b", "c", "a", "b"}, func(s string) string { return s })
	assert.Equal(t, []Count[string]{{"b", 3}, {"a", 2}, {"c", 1}}, got)
}

func TestSortByIsStable(t *testing.T) {
	in := []Count[string]{{"x", 1}, {"y", 2}, {"z", 1}, {"w", 2}}
	SortBy(in, func(a, b Count[string]) bool { return a.Count > b.Count })
	assert.Equal(t, []Count[string]{{"y", 2}, {"w", 2}, {"x", 1}, {"z", 1}}, in)
}

func TestUniqueByFilterTake(t *testing.T) {
	words := []string{"Oil", "oil", "Filter", "belt"}
	uniq := UniqueBy(words, func(s string) int { return len(s) })
	assert.Equal(t, []string{"Oil", "Filter", "belt"}, uniq)

	long := Filter(words, func(s string) bool { return len(s) > 3 })
	assert.Equal(t, []string{"Filter", "belt"}, long)

	assert.Equal(t, []string{"Oil"}, Take(words, 1))
	assert.Len(t, Take(words, 10), 4)
	assert.Empty(t, Take(words, -1))
}

func TestKeyByAndPluck(t *testing.T) {
	type p struct {
		ID   int
		Name string
	}
	ps := []p{{1, "a"}, {2, "b"}}
	assert.Equal(t, "b", KeyBy(ps, func(x p) int { return x.ID })[2].Name)
	assert.Equal(t, []string{"a", "b"}, Pluck(ps, func(x p) string { return x.Name }))
}
