package bench

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sweeper/pkg/sweeper/board"
	"github.com/cognicore/sweeper/pkg/sweeper/config"
	"github.com/cognicore/sweeper/pkg/sweeper/game"
	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/metrics"
	"github.com/cognicore/sweeper/pkg/sweeper/store/memstore"
	"github.com/cognicore/sweeper/pkg/sweeper/store/sqlite"
)

func smallRun() Options {
	return Options{Height: 6, Width: 6, Mines: 5, Games: 30, Workers: 4, Seed: 100}
}

func TestRunRecordsEveryGame(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	m := metrics.New(prometheus.NewRegistry())

	opts := smallRun()
	opts.Store = st
	opts.Metrics = m
	sum, err := Run(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, 30, sum.Games)
	assert.Equal(t, sum.Games, sum.Won+sum.Lost+sum.Stalled)
	assert.Zero(t, sum.Stalled)
	assert.Greater(t, sum.MeanMoves, 0.0)

	ledger, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, sum.Games, ledger.Games)
	assert.Equal(t, sum.Won, ledger.Won)
	assert.InDelta(t, sum.MeanMoves, ledger.AvgMoves, 1e-9)

	won := testutil.ToFloat64(m.GamesTotal.WithLabelValues("won"))
	lost := testutil.ToFloat64(m.GamesTotal.WithLabelValues("lost"))
	assert.Equal(t, float64(sum.Won), won)
	assert.Equal(t, float64(sum.Lost), lost)
	assert.Greater(t, testutil.ToFloat64(m.RoundsTotal), 0.0)
}

func TestRunIsReproducible(t *testing.T) {
	ctx := context.Background()

	serial := smallRun()
	serial.Workers = 1
	parallel := smallRun()
	parallel.Workers = 8

	a, err := Run(ctx, serial)
	require.NoError(t, err)
	b, err := Run(ctx, parallel)
	require.NoError(t, err)

	assert.Equal(t, a.Won, b.Won, "worker count must not change outcomes")
	assert.Equal(t, a.Lost, b.Lost)
	assert.Equal(t, a.MeanMoves, b.MeanMoves)
}

func TestRecordedGameReplays(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	opts := smallRun()
	opts.Games = 5
	opts.Store = st
	_, err := Run(ctx, opts)
	require.NoError(t, err)

	games, err := st.ListGames(ctx, 0)
	require.NoError(t, err)
	require.Len(t, games, 5)

	rec := games[0]
	boardRng, agentRng := Rngs(rec.Seed)
	b, err := board.Random(grid.Grid{Height: rec.Height, Width: rec.Width}, rec.Mines, boardRng)
	require.NoError(t, err)
	res, err := game.Play(ctx, b, game.Options{Rng: agentRng})
	require.NoError(t, err)
	assert.Equal(t, rec.Outcome, string(res.Outcome))
	assert.Equal(t, rec.Moves, res.Moves)
}

func TestRunWithVerification(t *testing.T) {
	opts := smallRun()
	opts.Games = 6
	opts.Verify = true
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
}

func TestRunSQLiteLedger(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	opts := smallRun()
	opts.Games = 12
	opts.Store = st
	sum, err := Run(ctx, opts)
	require.NoError(t, err)

	ledger, err := st.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, ledger.Games)
	assert.Equal(t, sum.Won, ledger.Won)
}

func TestRunRejectsBadBoard(t *testing.T) {
	opts := smallRun()
	opts.Height = 0
	_, err := Run(context.Background(), opts)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	opts = smallRun()
	opts.Mines = 37
	_, err = Run(context.Background(), opts)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smallRun())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Verify = true
	opts := FromConfig(cfg)
	assert.Equal(t, 8, opts.Height)
	assert.Equal(t, 100, opts.Games)
	assert.True(t, opts.Verify)
	assert.Nil(t, opts.Store)
}

func TestSummaryWinRate(t *testing.T) {
	assert.Zero(t, Summary{}.WinRate())
	assert.Equal(t, 0.25, Summary{Games: 4, Won: 1}.WinRate())
}
