package store

import (
	"context"
	"time"
)

// Store is the ledger of finished games
type Store interface {
	Close() error

	SaveGame(ctx context.Context, g GameRecord) error
	GetGame(ctx context.Context, id string) (GameRecord, error)
	// ListGames returns the most recent games first. limit <= 0 means all.
	ListGames(ctx context.Context, limit int) ([]GameRecord, error)
	Summary(ctx context.Context) (Stats, error)
}

// GameRecord is one finished game
type GameRecord struct {
	ID           string // ULID, sorts by start time
	Seed         uint64
	Height       int
	Width        int
	Mines        int
	Outcome      string // won, lost, stalled
	Moves        int
	SafeMoves    int
	RandomMoves  int
	MinesFlagged int
	Duration     time.Duration
	StartedAt    time.Time
}

// Stats aggregates every recorded game
type Stats struct {
	Games    int
	Won      int
	Lost     int
	Stalled  int
	AvgMoves float64
}

// WinRate is Won/Games, or 0 for an empty ledger
func (s Stats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Games)
}
