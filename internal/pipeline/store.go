package pipeline

import (
	"sync/atomic"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// Store holds the latest completed snapshot. Readers always see a whole
// snapshot; a cycle replaces it in one atomic swap.
type Store struct {
	current atomic.Pointer[domain.Snapshot]
}

// Load returns the latest snapshot, or nil before the first cycle completes.
func (s *Store) Load() *domain.Snapshot {
	return s.current.Load()
}

// Swap installs snap and returns the snapshot it replaced.
func (s *Store) Swap(snap *domain.Snapshot) *domain.Snapshot {
	return s.current.Swap(snap)
}
