// Package blobtest provides an in-memory ObjectStore for tests.
package blobtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrObjectMissing is returned by SignedGetURL for unknown keys.
var ErrObjectMissing = errors.New("object missing")

// MemStore is a map-backed ObjectStore with failure injection.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailPut makes Put fail; FailRemove makes Remove fail. Both count calls.
	FailPut     bool
	FailRemove  bool
	PutCalls    int
	RemoveCalls int
}

// NewMemStore returns an empty in-memory object store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (m *MemStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.FailPut {
		return errors.New("injected put failure")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *MemStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrObjectMissing
	}
	return fmt.Sprintf("https://objects.example.test/%s?expires=%d", key, int64(ttl.Seconds())), nil
}

// Remove mirrors the S3 contract: deleting a missing key succeeds.
func (m *MemStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	if m.FailRemove {
		return errors.New("injected remove failure")
	}
	delete(m.objects, key)
	return nil
}

func (m *MemStore) Ping(ctx context.Context) error { return nil }

// Has reports whether an object exists at key.
func (m *MemStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Get returns the stored bytes for key.
func (m *MemStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Keys returns all stored keys.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// Drop removes a key directly, simulating out-of-band object loss.
func (m *MemStore) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}
