// Package persist is the best-effort write-through layer for active session
// state. Storage is an optimization: every failure is swallowed at this
// boundary and the in-memory session carries on.
package persist

import "sync"

// KV is the minimal key-value contract the adapter writes through to.
// Implementations may be unavailable at runtime; all errors are handled (by
// being ignored) one layer up.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process KV, used in tests and as a fallback when no
// durable store is configured.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
