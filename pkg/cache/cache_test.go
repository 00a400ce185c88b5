package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string
	Owner string
	N     int
}

func TestIndexedSetGetDel(t *testing.T) {
	c := NewIndexed[string, item]()

	c.Set("a", item{ID: "a", Owner: "u1"})
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "u1", v.Owner)

	c.Del("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestIndexedFind(t *testing.T) {
	c := NewIndexed[string, item]()
	c.AddIndex("owner", func(v item) any { return v.Owner })

	c.Set("a", item{ID: "a", Owner: "u1"})
	c.Set("b", item{ID: "b", Owner: "u1"})
	c.Set("c", item{ID: "c", Owner: "u2"})

	got, err := c.Find("owner", "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.Find("owner", "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.Find("missing", "u1")
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestIndexedFindAfterUpdate(t *testing.T) {
	c := NewIndexed[string, item]()
	c.AddIndex("owner", func(v item) any { return v.Owner })

	c.Set("a", item{ID: "a", Owner: "u1"})
	c.Set("a", item{ID: "a", Owner: "u2"})

	got, err := c.Find("owner", "u1")
	require.NoError(t, err)
	assert.Empty(t, got, "stale index entry must be unlinked on update")

	got, err = c.Find("owner", "u2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIndexedAddIndexReindexesExisting(t *testing.T) {
	c := NewIndexed[string, item]()
	c.Set("a", item{ID: "a", Owner: "u1"})

	c.AddIndex("owner", func(v item) any { return v.Owner })

	got, err := c.Find("owner", "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIndexedFilter(t *testing.T) {
	c := NewIndexed[string, item]()
	c.Set("a", item{ID: "a", N: 1})
	c.Set("b", item{ID: "b", N: 2})
	c.Set("c", item{ID: "c", N: 3})

	got := c.Filter(func(v item) bool { return v.N >= 2 })
	assert.Len(t, got, 2)
}
