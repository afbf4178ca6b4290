package graph

import (
	"github.com/agenthands/trellis/internal/driver"
)

// Store couples the graph driver with an explicit availability flag. The
// flag is set once at startup (or by tests) instead of components probing
// ambient globals; when the store is down, mutating operations become
// logged no-ops and queries return empty views.
type Store struct {
	Driver    driver.GraphDriver
	Available bool
}

func NewStore(d driver.GraphDriver, available bool) *Store {
	return &Store{Driver: d, Available: available}
}

func (s *Store) Ready() bool {
	return s != nil && s.Available && s.Driver != nil
}
