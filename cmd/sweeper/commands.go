package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cognicore/sweeper/pkg/sweeper/bench"
	"github.com/cognicore/sweeper/pkg/sweeper/board"
	"github.com/cognicore/sweeper/pkg/sweeper/config"
	"github.com/cognicore/sweeper/pkg/sweeper/game"
	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/metrics"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
	"github.com/cognicore/sweeper/pkg/sweeper/store/memstore"
	"github.com/cognicore/sweeper/pkg/sweeper/store/sqlite"
)

var (
	// --- play ---
	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one game and print the result",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
	playHeight int
	playWidth  int
	playMines  int
	playSeed   uint64
	playVerify bool

	// --- bench ---
	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Play many seeded games concurrently and record them",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchGames       int
	benchWorkers     int
	benchDB          string
	benchMetricsAddr string

	// --- stats ---
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Summarize the games recorded in a ledger",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	statsDB    string
	statsLimit int
)

func init() {
	f := playCmd.Flags()
	f.IntVar(&playHeight, "height", 8, "board height")
	f.IntVar(&playWidth, "width", 8, "board width")
	f.IntVar(&playMines, "mines", 8, "number of mines")
	f.Uint64Var(&playSeed, "seed", 1, "seed for the board and the agent")
	f.BoolVar(&playVerify, "verify", false, "cross-check every inference with the SAT oracle")

	f = benchCmd.Flags()
	f.IntVar(&benchGames, "games", 100, "games to play")
	f.IntVar(&benchWorkers, "workers", 4, "games played concurrently")
	f.StringVar(&benchDB, "db", "", "sqlite ledger path (default: in-memory)")
	f.StringVar(&benchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	f = statsCmd.Flags()
	f.StringVar(&statsDB, "db", "", "sqlite ledger path")
	f.IntVar(&statsLimit, "limit", 10, "recent games to list")
}

// signalContext cancels on interrupt so long runs stop between moves.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("height") || configPath == "" {
		cfg.Board.Height = playHeight
	}
	if flags.Changed("width") || configPath == "" {
		cfg.Board.Width = playWidth
	}
	if flags.Changed("mines") || configPath == "" {
		cfg.Board.Mines = playMines
	}
	if flags.Changed("seed") || configPath == "" {
		cfg.Bench.Seed = playSeed
	}
	if flags.Changed("verify") {
		cfg.Engine.Verify = playVerify
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	g, err := grid.New(cfg.Board.Height, cfg.Board.Width)
	if err != nil {
		return err
	}
	boardRng, agentRng := bench.Rngs(cfg.Bench.Seed)
	b, err := board.Random(g, cfg.Board.Mines, boardRng)
	if err != nil {
		return err
	}
	res, err := game.Play(ctx, b, game.Options{
		Rng:        agentRng,
		Logger:     logger,
		RoundLimit: cfg.Engine.RoundLimit,
		Verify:     cfg.Engine.Verify,
	})
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), cfg, res)
	return nil
}

func printResult(w io.Writer, cfg config.Config, res game.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "game\t%s\n", res.ID)
	fmt.Fprintf(tw, "board\t%dx%d, %d mines, seed %d\n", cfg.Board.Height, cfg.Board.Width, cfg.Board.Mines, cfg.Bench.Seed)
	fmt.Fprintf(tw, "outcome\t%s\n", res.Outcome)
	fmt.Fprintf(tw, "moves\t%d (%d safe, %d random)\n", res.Moves, res.SafeMoves, res.RandomMoves)
	fmt.Fprintf(tw, "mines flagged\t%d\n", res.MinesFlagged)
	fmt.Fprintf(tw, "duration\t%s\n", res.Duration.Round(time.Microsecond))
	tw.Flush()
}

// openStore picks the ledger backend from the configuration.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store.Driver == "sqlite" {
		return sqlite.OpenSQLite(ctx, cfg.Store.Path)
	}
	return memstore.New(), nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("games") {
		cfg.Bench.Games = benchGames
	}
	if flags.Changed("workers") {
		cfg.Bench.Workers = benchWorkers
	}
	if benchDB != "" {
		cfg.Store = config.Store{Driver: "sqlite", Path: benchDB}
	}
	if benchMetricsAddr != "" {
		cfg.Metrics.Addr = benchMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer srv.Close()
	}

	opts := bench.FromConfig(cfg)
	opts.Store = st
	opts.Metrics = m
	opts.Logger = logger
	sum, err := bench.Run(ctx, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "games %d  won %d  lost %d  stalled %d  win rate %.1f%%  mean moves %.1f  elapsed %s\n",
		sum.Games, sum.Won, sum.Lost, sum.Stalled, 100*sum.WinRate(), sum.MeanMoves, sum.Elapsed.Round(time.Millisecond))
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener", "addr", addr, "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := statsDB
	if path == "" && cfg.Store.Driver == "sqlite" {
		path = cfg.Store.Path
	}
	if path == "" {
		return fmt.Errorf("--db required: %w", internalerr.ErrInvalidInput)
	}

	ctx := cmd.Context()
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()
	return printStats(ctx, cmd.OutOrStdout(), st, statsLimit)
}

func printStats(ctx context.Context, w io.Writer, st store.Store, limit int) error {
	sum, err := st.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "games %d  won %d  lost %d  stalled %d  win rate %.1f%%  mean moves %.1f\n",
		sum.Games, sum.Won, sum.Lost, sum.Stalled, 100*sum.WinRate(), sum.AvgMoves)
	if limit <= 0 || sum.Games == 0 {
		return nil
	}

	games, err := st.ListGames(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOARD\tSEED\tOUTCOME\tMOVES\tFLAGGED")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%dx%d/%d\t%d\t%s\t%d\t%d\n", g.ID, g.Height, g.Width, g.Mines, g.Seed, g.Outcome, g.Moves, g.MinesFlagged)
	}
	return tw.Flush()
}
