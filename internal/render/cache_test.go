package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func art(id string) Artifact {
	return Artifact{RequestID: id, Path: id + ".png"}
}

func TestCachePutGet(t *testing.T) {
	c := newArtifactCache(3)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", art("a"))
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "a.png", got.Path)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newArtifactCache(2)
	c.put("a", art("a"))
	c.put("b", art("b"))

	// Touch "a" so "b" is the LRU entry.
	_, ok := c.get("a")
	assert.True(t, ok)

	c.put("c", art("c"))
	assert.Equal(t, 2, c.len())

	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestCacheUpdateExistingKey(t *testing.T) {
	c := newArtifactCache(2)
	c.put("a", art("a"))
	c.put("a", Artifact{RequestID: "a", Path: "a-v2.png"})

	assert.Equal(t, 1, c.len())
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "a-v2.png", got.Path)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := newArtifactCache(16)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n+j)%32)
				c.put(key, art(key))
				c.get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.LessOrEqual(t, c.len(), 16)
}
