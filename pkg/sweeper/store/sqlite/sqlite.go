package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	// Benchmark workers save concurrently; a single connection serializes them
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	height INTEGER NOT NULL,
	width INTEGER NOT NULL,
	mines INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	moves INTEGER NOT NULL,
	safe_moves INTEGER NOT NULL,
	random_moves INTEGER NOT NULL,
	mines_flagged INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	started_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_outcome ON games(outcome);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveGame inserts or replaces a game record
func (s *sqliteStore) SaveGame(ctx context.Context, g store.GameRecord) error {
	if g.ID == "" {
		return fmt.Errorf("game without id: %w", internalerr.ErrInvalidInput)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO games (id, seed, height, width, mines, outcome, moves, safe_moves, random_moves, mines_flagged, duration_ns, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	seed=excluded.seed,
	height=excluded.height,
	width=excluded.width,
	mines=excluded.mines,
	outcome=excluded.outcome,
	moves=excluded.moves,
	safe_moves=excluded.safe_moves,
	random_moves=excluded.random_moves,
	mines_flagged=excluded.mines_flagged,
	duration_ns=excluded.duration_ns,
	started_at=excluded.started_at`,
		g.ID,
		int64(g.Seed), // stored bit-for-bit; sqlite integers are signed
		g.Height,
		g.Width,
		g.Mines,
		g.Outcome,
		g.Moves,
		g.SafeMoves,
		g.RandomMoves,
		g.MinesFlagged,
		int64(g.Duration),
		g.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return tx.Commit()
}

const gameColumns = `id, seed, height, width, mines, outcome, moves, safe_moves, random_moves, mines_flagged, duration_ns, started_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (store.GameRecord, error) {
	var (
		g        store.GameRecord
		seed     int64
		duration int64
		started  string
	)
	err := row.Scan(&g.ID, &seed, &g.Height, &g.Width, &g.Mines, &g.Outcome,
		&g.Moves, &g.SafeMoves, &g.RandomMoves, &g.MinesFlagged, &duration, &started)
	if err != nil {
		return store.GameRecord{}, err
	}
	g.Seed = uint64(seed)
	g.Duration = time.Duration(duration)
	if parsed, perr := time.Parse(time.RFC3339Nano, started); perr == nil {
		g.StartedAt = parsed
	}
	return g, nil
}

// GetGame retrieves a game by ID
func (s *sqliteStore) GetGame(ctx context.Context, id string) (store.GameRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return store.GameRecord{}, fmt.Errorf("game %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.GameRecord{}, err
	}
	return g, nil
}

// ListGames returns games newest first
func (s *sqliteStore) ListGames(ctx context.Context, limit int) ([]store.GameRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Summary aggregates the whole ledger in one query
func (s *sqliteStore) Summary(ctx context.Context) (store.Stats, error) {
	var (
		st       store.Stats
		avgMoves sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(SUM(outcome = 'won'), 0),
	COALESCE(SUM(outcome = 'lost'), 0),
	COALESCE(SUM(outcome = 'stalled'), 0),
	AVG(moves)
FROM games`).Scan(&st.Games, &st.Won, &st.Lost, &st.Stalled, &avgMoves)
	if err != nil {
		return store.Stats{}, err
	}
	st.AvgMoves = avgMoves.Float64
	return st, nil
}
