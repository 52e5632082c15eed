package settings

import (
	"context"
	"sync"

	"github.com/vectora-ai/vectora/pkg/analysis"
)

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with s.
func NewMemoryStore(s Settings) *MemoryStore {
	return &MemoryStore{rec: s.ToRecord()}
}

func (m *MemoryStore) Load(context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return FromRecord(m.rec), nil
}

func (m *MemoryStore) Save(_ context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rec = s.ToRecord()
	return nil
}

func (m *MemoryStore) SaveLastCheck(_ context.Context, res analysis.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rec.LastCheck = &res
	return nil
}
