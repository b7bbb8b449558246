package ledger

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Memory is an in-memory Ledger.
type Memory struct {
	// Now stamps new entries; time.Now when nil.
	Now func() time.Time

	mu        sync.Mutex
	apps      map[string]map[string]time.Time
	mutations int
}

// NewMemory creates a ledger seeded with entries.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{apps: make(map[string]map[string]time.Time)}
	for _, e := range entries {
		m.put(e.App, e.Name, e.AppliedAt)
	}

	return m
}

func (m *Memory) Applied(_ context.Context, app string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied := m.apps[app]
	entries := make([]Entry, 0, len(applied))
	for _, name := range slices.Sorted(maps.Keys(applied)) {
		entries = append(entries, Entry{App: app, Name: name, AppliedAt: applied[name]})
	}

	return entries, nil
}

func (m *Memory) Record(_ context.Context, app, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.apps[app][name]; ok {
		return errors.Errorf("%s:%s is already recorded", app, name)
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	m.put(app, name, now().UTC())
	m.mutations++
	return nil
}

func (m *Memory) Unrecord(_ context.Context, app, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.apps[app], name)
	m.mutations++
	return nil
}

func (m *Memory) DeleteGhost(ctx context.Context, app, name string) error {
	return m.Unrecord(ctx, app, name)
}

// Mutations returns how many writes the ledger has accepted.
func (m *Memory) Mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutations
}

func (m *Memory) put(app, name string, at time.Time) {
	if m.apps == nil {
		m.apps = make(map[string]map[string]time.Time)
	}

	if m.apps[app] == nil {
		m.apps[app] = make(map[string]time.Time)
	}

	m.apps[app][name] = at
}
