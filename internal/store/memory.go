// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds the live games of the HTTP API keyed by game ID.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update serialises mutations of a single game, since *game.Game is
//     not safe for concurrent use.
//   - State is lost when the process restarts; finished games are
//     persisted separately by the database package and pruned from
//     memory once they have been over for a while.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Entry is a stored game together with the identity that may play it.
type Entry struct {
	Game  *game.Game
	Owner string // user ID or anonymous ID
	Daily bool   // played through /daily, whose routes record the result
}

// Store defines the persistence interface for live games.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, e Entry) error

	// Get returns a snapshot of the game by ID.
	Get(ctx context.Context, id string) (game.State, string, error)

	// Update runs fn with exclusive access to the game.
	Update(ctx context.Context, id string, fn func(e Entry) error) error

	// Delete removes a game; deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Prune removes games that ended before the cutoff and returns how
	// many were removed. Games still in progress are kept.
	Prune(ctx context.Context, before time.Time) (int, error)
}

type memory struct {
	mu    sync.RWMutex
	games map[string]*slot
}

// slot pairs an entry with the lock that serialises its mutations.
type slot struct {
	mu sync.Mutex
	e  Entry
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*slot)}
}

func (m *memory) Save(ctx context.Context, e Entry) error {
	if e.Game == nil {
		return errors.New("store: nil game")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[e.Game.ID()] = &slot{e: e}
	return nil
}

func (m *memory) lookup(id string) (*slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *memory) Get(ctx context.Context, id string) (game.State, string, error) {
	s, err := m.lookup(id)
	if err != nil {
		return game.State{}, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Game.Snapshot(), s.e.Owner, nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(e Entry) error) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.e)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.games {
		s.mu.Lock()
		g := s.e.Game
		expired := g.Status().Finished() && g.Ended().Before(before)
		s.mu.Unlock()
		if expired {
			delete(m.games, id)
			n++
		}
	}
	return n, nil
}
