package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteRoundTrip saves a game and reads every field back
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	rec := store.GameRecord{
		ID:           "01HZX3W6J8Q4V7K2N5M9P0R1ST",
		Seed:         1<<63 + 5,
		Height:       8,
		Width:        8,
		Mines:        8,
		Outcome:      "won",
		Moves:        56,
		SafeMoves:    53,
		RandomMoves:  3,
		MinesFlagged: 8,
		Duration:     1500 * time.Microsecond,
		StartedAt:    time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC),
	}
	if err := st.SaveGame(ctx, rec); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	got, err := st.GetGame(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if !got.StartedAt.Equal(rec.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, rec.StartedAt)
	}
	got.StartedAt = rec.StartedAt
	if got != rec {
		t.Errorf("got %+v\nwant %+v", got, rec)
	}

	// Saving again replaces
	rec.Outcome = "lost"
	if err := st.SaveGame(ctx, rec); err != nil {
		t.Fatalf("SaveGame (update): %v", err)
	}
	got, _ = st.GetGame(ctx, rec.ID)
	if got.Outcome != "lost" {
		t.Errorf("Outcome = %s after update", got.Outcome)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	_, err := openTemp(t).GetGame(context.Background(), "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteListAndSummary(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	empty, err := st.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary on empty ledger: %v", err)
	}
	if empty.Games != 0 || empty.AvgMoves != 0 {
		t.Fatalf("empty summary: %+v", empty)
	}

	outcomes := []string{"won", "lost", "won", "stalled", "won"}
	for i, o := range outcomes {
		rec := store.GameRecord{ID: fmt.Sprintf("G%02d", i), Outcome: o, Moves: (i + 1) * 2, StartedAt: time.Now()}
		if err := st.SaveGame(ctx, rec); err != nil {
			t.Fatalf("SaveGame: %v", err)
		}
	}

	list, err := st.ListGames(ctx, 2)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(list) != 2 || list[0].ID != "G04" || list[1].ID != "G03" {
		t.Fatalf("unexpected list: %+v", list)
	}
	all, _ := st.ListGames(ctx, 0)
	if len(all) != len(outcomes) {
		t.Fatalf("ListGames(0) returned %d games", len(all))
	}

	sum, err := st.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Games != 5 || sum.Won != 3 || sum.Lost != 1 || sum.Stalled != 1 {
		t.Errorf("unexpected counts: %+v", sum)
	}
	if sum.AvgMoves != 6 {
		t.Errorf("AvgMoves = %v, want 6", sum.AvgMoves)
	}
}

// TestSQLiteConcurrentSaves mirrors benchmark workers sharing one ledger
func TestSQLiteConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- st.SaveGame(ctx, store.GameRecord{ID: fmt.Sprintf("C%03d", i), Outcome: "won"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent SaveGame: %v", err)
		}
	}

	sum, _ := st.Summary(ctx)
	if sum.Games != 40 {
		t.Fatalf("Games = %d, want 40", sum.Games)
	}
}
