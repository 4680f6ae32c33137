package generics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceMap(t *testing.T) {
	doubled := SliceMap([]int{1, 2, 3}, func(e int) int { return 2 * e })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	empty := SliceMap(nil, func(e int) string { return "" })
	assert.Empty(t, empty)
}

func TestSortedKeysSlice(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeysSlice(m))
}

func TestSet(t *testing.T) {
	s := SetWith("alice", "bob")
	assert.True(t, s.Has("alice"))
	assert.False(t, s.Has("charlie"))

	s.Insert("charlie")
	assert.True(t, s.Has("charlie"))

	s.Delete("alice")
	assert.False(t, s.Has("alice"))
	assert.Len(t, s, 2)

	clone := s.Clone()
	clone.Delete("bob")
	assert.True(t, s.Has("bob"), "clone is independent")
}
