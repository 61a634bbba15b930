package config

import "sync"

// Store holds the live configuration shared between the foreground reactor,
// the monitor and the config watcher. Readers take a short-lived copy per
// cycle rather than holding the lock across any blocking call.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore seeds a store with the initial configuration.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg.Clone()}
}

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace swaps in a new configuration. Callers validate before replacing.
func (s *Store) Replace(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
}
