package api

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nauticalab/dotcfg/pkg/config"
)

// Loader produces a freshly resolved configuration.
type Loader func(ctx context.Context) (*config.Config, error)

// Snapshot is one resolved configuration and the time it was loaded.
// Snapshots are never modified after they are stored.
type Snapshot struct {
	Config   *config.Config
	LoadedAt time.Time
}

// Store holds the current snapshot. Readers never block: a reload builds a
// complete new snapshot and swaps the pointer.
type Store struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewStore creates an empty store backed by loader.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader, now: time.Now}
}

// Current returns the installed snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload runs the loader and installs its result. On failure the previous
// snapshot stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	if s.loader == nil {
		return nil, errors.New("no configuration loader")
	}

	cfg, err := s.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	snap := &Snapshot{Config: cfg, LoadedAt: s.now()}
	s.current.Store(snap)
	return snap, nil
}
