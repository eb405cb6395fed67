package payload

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/models"
)

// Snapshot is one loaded payload together with its source bytes
type Snapshot struct {
	Results  *models.Results
	Raw      []byte
	Source   string
	LoadedAt time.Time
	Version  uint64
}

// Store holds the current payload. Readers always see a complete snapshot;
// a reload swaps the whole set or leaves the previous one in place.
type Store struct {
	source  string
	loader  *Loader
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore returns an empty store that reloads from source
func NewStore(source string, loader *Loader) *Store {
	return &Store{source: source, loader: loader}
}

// Source returns the configured payload location
func (s *Store) Source() string { return s.source }

// Current returns the active snapshot, or nil before the first load
func (s *Store) Current() *Snapshot { return s.current.Load() }

// Version returns how many payloads have been swapped in
func (s *Store) Version() uint64 { return s.version.Load() }

// Swap installs res as the current payload and returns the new snapshot.
func (s *Store) Swap(res *models.Results, raw []byte) *Snapshot {
	snap := &Snapshot{
		Results:  res,
		Raw:      raw,
		Source:   s.source,
		LoadedAt: time.Now(),
		Version:  s.version.Add(1),
	}
	s.current.Store(snap)
	return snap
}

// Reload loads the source again. On failure the previous snapshot stays.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	res, raw, err := s.loader.Load(ctx, s.source)
	if err != nil {
		logger.Warn.Printf("📦 payload reload from %s failed: %v", s.source, err)
		return s.Current(), err
	}
	snap := s.Swap(res, raw)
	logger.Info.Printf("📦 payload v%d loaded: %d rows, %d pass (%s)",
		snap.Version, len(res.Data), res.PassCount(), res.Metadata.Timestamp)
	return snap, nil
}
