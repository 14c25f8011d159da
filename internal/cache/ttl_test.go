package cache

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache[string], *clockwork.FakeClock, *[]string) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC))
	var results []string
	c := New[string](clock, 30*time.Second, func(r string) { results = append(results, r) })
	return c, clock, &results
}

func TestCache_GetMiss(t *testing.T) {
	c, _, results := newTestCache(t)

	_, ok := c.Get("/hubs")
	assert.False(t, ok)
	assert.Equal(t, []string{ResultMiss}, *results)
}

func TestCache_PutThenGet(t *testing.T) {
	c, clock, results := newTestCache(t)

	c.Put("/hubs", "payload")
	clock.Advance(29 * time.Second)

	v, ok := c.Get("/hubs")
	require.True(t, ok)
	assert.Equal(t, "payload", v)
	assert.Equal(t, []string{ResultHit}, *results)
}

func TestCache_ExpiresAtTTL(t *testing.T) {
	c, clock, results := newTestCache(t)

	c.Put("/hubs", "payload")
	clock.Advance(30 * time.Second)

	_, ok := c.Get("/hubs")
	assert.False(t, ok)
	assert.Equal(t, []string{ResultExpired}, *results)
	assert.Equal(t, 0, c.Status().Size, "expired entry should be evicted on read")
}

func TestCache_PutOverwritesAndRestartsWindow(t *testing.T) {
	c, clock, _ := newTestCache(t)

	c.Put("/hubs", "first")
	clock.Advance(20 * time.Second)
	c.Put("/hubs", "second")
	clock.Advance(20 * time.Second)

	v, ok := c.Get("/hubs")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestCache_Clear(t *testing.T) {
	c, _, _ := newTestCache(t)
	c.Put("/hubs", "a")
	c.Put("/alerts", "b")

	c.Clear()

	assert.Equal(t, Status{Size: 0, Keys: []string{}}, c.Status())
	_, ok := c.Get("/hubs")
	assert.False(t, ok)
}

func TestCache_PutIfCurrentRejectsValueFetchedBeforeClear(t *testing.T) {
	c, _, _ := newTestCache(t)

	gen := c.Generation()
	assert.True(t, c.PutIfCurrent("/hubs", "fresh", gen))

	stale := c.Generation()
	c.Clear()
	assert.False(t, c.PutIfCurrent("/hubs", "stale", stale))
	assert.Equal(t, 0, c.Status().Size)

	assert.True(t, c.PutIfCurrent("/hubs", "refetched", c.Generation()))
	v, ok := c.Get("/hubs")
	require.True(t, ok)
	assert.Equal(t, "refetched", v)
}

func TestCache_StatusSortedKeys(t *testing.T) {
	c, _, _ := newTestCache(t)
	c.Put("/hubs?open_now=true", "a")
	c.Put("/alerts", "b")
	c.Put("/hubs/hub-001", "c")

	status := c.Status()
	assert.Equal(t, 3, status.Size)
	assert.Equal(t, []string{"/alerts", "/hubs/hub-001", "/hubs?open_now=true"}, status.Keys)
}

func TestNew_Defaults(t *testing.T) {
	c := New[int](nil, 0, nil)
	assert.Equal(t, DefaultTTL, c.TTL())

	c.Put("k", 1)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](clockwork.NewFakeClock(), time.Minute, nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := Key("/hubs", url.Values{"n": {string(rune('a' + i))}})
			c.Put(key, i)
			c.Get(key)
			c.Status()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, c.Status().Size)
}

func TestKey(t *testing.T) {
	a := Key("/hubs", url.Values{"lat": {"29.76"}, "lon": {"-95.36"}, "open_now": {"true"}})
	b := Key("/hubs", url.Values{"open_now": {"true"}, "lon": {"-95.36"}, "lat": {"29.76"}})

	assert.Equal(t, a, b, "parameter order must not change the key")
	assert.Equal(t, "/hubs?lat=29.76&lon=-95.36&open_now=true", a)
	assert.Equal(t, "/alerts", Key("/alerts", nil))
	assert.Equal(t, "/hubs?services=wifi%2Crestrooms", Key("/hubs", url.Values{"services": {"wifi,restrooms"}}))
}
