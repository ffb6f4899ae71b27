package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type bufferEntry struct {
	data      []byte
	mime      string
	createdAt time.Time
	once      bool
}

// BufferService is an in-process transient byte cache. Persistent entries
// live for a fixed TTL from creation; reads do not extend it, so a hot key
// still ages out. One-shot entries are removed by their first read and are
// exempt from the TTL, with a cap of ten TTLs from creation in case the
// consumer never arrives.
type BufferService struct {
	mu      sync.Mutex
	entries map[string]bufferEntry

	ttl     time.Duration
	sweep   time.Duration
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewBufferService constructs a BufferService. Zero durations fall back to
// the defaults of 120s TTL and 10s sweep interval.
func NewBufferService(ttl, sweep time.Duration, metrics *MetricsService, logger *zap.Logger) *BufferService {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	if sweep <= 0 {
		sweep = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BufferService{
		entries: make(map[string]bufferEntry),
		ttl:     ttl,
		sweep:   sweep,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Put stores bytes under a caller-chosen key, replacing any previous entry
// and restarting its lifetime.
func (s *BufferService) Put(key string, data []byte, mime string) {
	s.put(key, data, mime, false)
}

// PutOnce stores bytes under a fresh random key and returns the key. The
// entry is consumed by its first read.
func (s *BufferService) PutOnce(data []byte, mime string) string {
	key := uuid.NewString()
	s.put(key, data, mime, true)
	return key
}

func (s *BufferService) put(key string, data []byte, mime string, once bool) {
	s.mu.Lock()
	s.entries[key] = bufferEntry{
		data:      data,
		mime:      mime,
		createdAt: s.now(),
		once:      once,
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.metrics.SetBufferEntries(size)
}

// Get returns the entry under key. One-shot entries are removed before the
// data is returned, so a second read misses. Persistent entries past their
// TTL miss even if the sweep has not collected them yet; the read does not
// renew the TTL.
func (s *BufferService) Get(key string) ([]byte, string, bool) {
	now := s.now()
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok || s.aged(entry, now) {
		if ok {
			delete(s.entries, key)
		}
		size := len(s.entries)
		s.mu.Unlock()
		s.metrics.SetBufferEntries(size)
		s.metrics.RecordBufferGet(false)
		return nil, "", false
	}
	if entry.once {
		delete(s.entries, key)
	}
	size := len(s.entries)
	s.mu.Unlock()
	s.metrics.SetBufferEntries(size)
	s.metrics.RecordBufferGet(true)
	return entry.data, entry.mime, true
}

// aged reports whether an entry's creation age exceeds its lifetime bound:
// one TTL for persistent entries, ten TTLs for unconsumed one-shots.
func (s *BufferService) aged(entry bufferEntry, now time.Time) bool {
	limit := s.ttl
	if entry.once {
		limit = 10 * s.ttl
	}
	return now.Sub(entry.createdAt) > limit
}

// Len returns the number of live entries.
func (s *BufferService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes entries past their lifetime bound. It returns the number of
// evictions.
func (s *BufferService) Sweep() int {
	now := s.now()

	s.mu.Lock()
	evicted := 0
	for key, entry := range s.entries {
		if s.aged(entry, now) {
			delete(s.entries, key)
			evicted++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.SetBufferEntries(size)
	if evicted > 0 {
		s.logger.Debug("buffer sweep", zap.Int("evicted", evicted), zap.Int("remaining", size))
	}
	return evicted
}

// Run sweeps on a ticker until the context is cancelled.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
