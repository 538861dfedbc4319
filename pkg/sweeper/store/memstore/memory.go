package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-off runs.
type Store struct {
	mu    sync.RWMutex
	games map[string]store.GameRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{games: make(map[string]store.GameRecord)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveGame inserts or replaces a game, keyed by ID.
func (s *Store) SaveGame(ctx context.Context, g store.GameRecord) error {
	if g.ID == "" {
		return fmt.Errorf("game without id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
	return nil
}

// GetGame returns a game by ID.
func (s *Store) GetGame(ctx context.Context, id string) (store.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if g, ok := s.games[id]; ok {
		return g, nil
	}
	return store.GameRecord{}, fmt.Errorf("game %s: %w", id, internalerr.ErrNotFound)
}

// ListGames returns games newest first.
func (s *Store) ListGames(ctx context.Context, limit int) ([]store.GameRecord, error) {
	s.mu.RLock()
	out := make([]store.GameRecord, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Summary aggregates all stored games.
func (s *Store) Summary(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st store.Stats
	moves := 0
	for _, g := range s.games {
		st.Games++
		moves += g.Moves
		switch g.Outcome {
		case "won":
			st.Won++
		case "lost":
			st.Lost++
		case "stalled":
			st.Stalled++
		}
	}
	if st.Games > 0 {
		st.AvgMoves = float64(moves) / float64(st.Games)
	}
	return st, nil
}
