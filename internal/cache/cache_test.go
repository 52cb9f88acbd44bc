package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	// "b" is now least recently used.
	c.Set("c", "3")
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Size())

	c.Set("a", "updated")
	v, _ = c.Get("a")
	assert.Equal(t, "updated", v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Purge()
	assert.Zero(t, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clock.now)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", 3)

	clock.t = clock.t.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "expired on read")
	assert.Equal(t, 1, c.CleanExpired(), "b is expired, c is not")
	assert.Equal(t, 1, c.Size())

	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLRUNoTTL(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](0, 0).WithClock(clock.now)
	c.Set("a", 1)
	clock.t = clock.t.Add(24 * time.Hour)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("b", 2)
	assert.Equal(t, 1, c.Size(), "size is clamped to one entry")
}

func TestManager(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	assert.Zero(t, m.CleanAll())

	clock.t = clock.t.Add(2 * time.Second)
	assert.Equal(t, 1, m.CleanAll())

	stop := m.Start(context.Background(), time.Millisecond)
	stop()
}
