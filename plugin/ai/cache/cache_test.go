package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New[string](10)

	c.Set("hola", "HOLA")
	got, ok := c.Get("hola")
	require.True(t, ok)
	assert.Equal(t, "HOLA", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestKeyNormalization(t *testing.T) {
	c := New[string](10)

	c.Set("  Hola  ", "HOLA")

	got, ok := c.Get("hola")
	require.True(t, ok)
	assert.Equal(t, "HOLA", got)

	got, ok = c.Get("HOLA ")
	require.True(t, ok)
	assert.Equal(t, "HOLA", got)

	assert.Equal(t, 1, c.Len())
}

func TestFIFOEviction(t *testing.T) {
	c := New[int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "entry %s should survive", k)
	}
}

func TestGetDoesNotRefreshOrder(t *testing.T) {
	c := New[int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Heavy reads on "a" must not save it from eviction.
	for i := 0; i < 100; i++ {
		_, ok := c.Get("a")
		require.True(t, ok)
	}

	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "reads must not refresh insertion order")
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestUpdateKeepsInsertionPosition(t *testing.T) {
	c := New[int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Rewriting "a" keeps it the oldest entry.
	c.Set("a", 100)
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "updated entry keeps its original position")

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCapacityFallback(t *testing.T) {
	c := New[int](0)
	for i := 0; i < DefaultCapacity+10; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	assert.Equal(t, DefaultCapacity, c.Len())

	// The most recently inserted keys are always present.
	for i := 10; i < DefaultCapacity+10; i++ {
		_, ok := c.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int](10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](100)
	done := make(chan struct{})

	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", i%150)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.LessOrEqual(t, c.Len(), 100)
}
