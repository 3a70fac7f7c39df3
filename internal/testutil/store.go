package testutil

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
)

// ErrOverlap is returned by MockStore when two callers use it at once.
var ErrOverlap = errors.New("testutil: overlapping store access")

// MockStore is an in-memory single-cursor byte store.
//
// It fails any Seek or Read that overlaps another one in flight, which
// surfaces missing serialization in callers.
type MockStore struct {
	r        *bytes.Reader
	inFlight atomic.Int32
	seeks    atomic.Int64
	reads    atomic.Int64
	closed   atomic.Bool
}

// NewMockStore returns a store backed by data.
func NewMockStore(data []byte) *MockStore {
	return &MockStore{r: bytes.NewReader(data)}
}

// Read implements io.Reader.
func (m *MockStore) Read(p []byte) (int, error) {
	if m.inFlight.Add(1) != 1 {
		m.inFlight.Add(-1)
		return 0, ErrOverlap
	}
	defer m.inFlight.Add(-1)
	m.reads.Add(1)
	return m.r.Read(p)
}

// Seek implements io.Seeker.
func (m *MockStore) Seek(offset int64, whence int) (int64, error) {
	if m.inFlight.Add(1) != 1 {
		m.inFlight.Add(-1)
		return 0, ErrOverlap
	}
	defer m.inFlight.Add(-1)
	m.seeks.Add(1)
	return m.r.Seek(offset, whence)
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (m *MockStore) Closed() bool {
	return m.closed.Load()
}

// Reads returns the number of Read calls made so far.
func (m *MockStore) Reads() int64 {
	return m.reads.Load()
}

// Seeks returns the number of Seek calls made so far.
func (m *MockStore) Seeks() int64 {
	return m.seeks.Load()
}

var _ io.ReadSeekCloser = (*MockStore)(nil)

// MockCache implements a basic concurrency-safe cache for tests.
type MockCache struct {
	mu   sync.RWMutex
	data map[digest.Digest][]byte
	puts atomic.Int64
}

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[digest.Digest][]byte)}
}

// Get returns cached content for key.
func (c *MockCache) Get(key digest.Digest) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[key]
	return data, ok
}

// Put stores content under key.
func (c *MockCache) Put(key digest.Digest, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = bytes.Clone(content)
	c.puts.Add(1)
	return nil
}

// Delete removes cached content for key.
func (c *MockCache) Delete(key digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// MaxBytes returns 0 (unlimited).
func (c *MockCache) MaxBytes() int64 {
	return 0
}

// SizeBytes returns the current cache size in bytes.
func (c *MockCache) SizeBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, data := range c.data {
		total += int64(len(data))
	}
	return total
}

// Prune removes cached entries until the cache is at or below targetBytes.
func (c *MockCache) Prune(targetBytes int64) (int64, error) {
	if targetBytes < 0 {
		targetBytes = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, data := range c.data {
		total += int64(len(data))
	}
	var freed int64
	for key, data := range c.data {
		if total <= targetBytes {
			break
		}
		delete(c.data, key)
		total -= int64(len(data))
		freed += int64(len(data))
	}
	return freed, nil
}

// Puts returns the number of Put calls made so far.
func (c *MockCache) Puts() int64 {
	return c.puts.Load()
}

// Len returns the number of cached entries.
func (c *MockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
