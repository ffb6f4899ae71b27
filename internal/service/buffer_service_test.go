package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestBufferService(t *testing.T) (*BufferService, *time.Time) {
	t.Helper()
	svc := NewBufferService(120*time.Second, 10*time.Second, nil, nil)
	now := time.Unix(1000, 0)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestBufferServiceGetWithinTTL(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("key", []byte("payload"), "text/plain")

	*now = now.Add(100 * time.Second)
	data, mime, ok := svc.Get("key")
	require.True(t, ok)
	require.Equal(t, []byte("payload"), data)
	require.Equal(t, "text/plain", mime)
}

func TestBufferServiceReadsDoNotExtendLifetime(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("hot", []byte("payload"), "")

	// Keep the entry hot with a read every 100s. The TTL counts from
	// creation, so the third read lands past it and misses.
	*now = now.Add(100 * time.Second)
	_, _, ok := svc.Get("hot")
	require.True(t, ok)

	*now = now.Add(100 * time.Second)
	_, _, ok = svc.Get("hot")
	require.False(t, ok)
}

func TestBufferServiceSweepEvictsDespiteReads(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("hot", []byte("payload"), "")

	*now = now.Add(100 * time.Second)
	_, _, ok := svc.Get("hot")
	require.True(t, ok)

	*now = now.Add(30 * time.Second)
	evicted := svc.Sweep()
	require.Equal(t, 1, evicted)
	require.Equal(t, 0, svc.Len())
}

func TestBufferServiceExpiredEntryMisses(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("key", []byte("payload"), "")

	*now = now.Add(121 * time.Second)
	_, _, ok := svc.Get("key")
	require.False(t, ok)
	require.Equal(t, 0, svc.Len())
}

func TestBufferServiceOneShotConsumedByFirstRead(t *testing.T) {
	svc, _ := newTestBufferService(t)

	key := svc.PutOnce([]byte("once"), "image/png")
	require.NotEmpty(t, key)

	data, _, ok := svc.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte("once"), data)

	_, _, ok = svc.Get(key)
	require.False(t, ok)
}

func TestBufferServiceOneShotOutlivesTTL(t *testing.T) {
	svc, now := newTestBufferService(t)

	key := svc.PutOnce([]byte("slow consumer"), "image/png")

	// Well past the persistent TTL but under the 10x cap, the entry is
	// still waiting for its one read.
	*now = now.Add(121 * time.Second)
	require.Equal(t, 0, svc.Sweep())

	data, _, ok := svc.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte("slow consumer"), data)
}

func TestBufferServicePutReplacesAndRestartsLifetime(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("key", []byte("old"), "")
	*now = now.Add(110 * time.Second)
	svc.Put("key", []byte("new"), "")

	*now = now.Add(100 * time.Second)
	data, _, ok := svc.Get("key")
	require.True(t, ok)
	require.Equal(t, []byte("new"), data)
}

func TestBufferServiceSweepEvictsExpired(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.Put("stale", []byte("a"), "")
	*now = now.Add(60 * time.Second)
	svc.Put("fresh", []byte("b"), "")

	*now = now.Add(70 * time.Second)
	evicted := svc.Sweep()
	require.Equal(t, 1, evicted)
	require.Equal(t, 1, svc.Len())

	_, _, ok := svc.Get("fresh")
	require.True(t, ok)
}

func TestBufferServiceSweepDropsOverAgedOneShots(t *testing.T) {
	svc, now := newTestBufferService(t)

	svc.PutOnce([]byte("lingering"), "")

	// Ten TTLs is the cap for an entry nobody ever read.
	*now = now.Add(1200 * time.Second)
	require.Equal(t, 0, svc.Sweep())

	*now = now.Add(1 * time.Second)
	require.Equal(t, 1, svc.Sweep())
	require.Equal(t, 0, svc.Len())
}
