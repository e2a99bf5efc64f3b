package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/dummytext/pkg/markov"
	"github.com/CTAG07/dummytext/pkg/runlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// generateFlags holds the raw flag values of the root command. They only
// take effect when set explicitly, so config file values survive.
type generateFlags struct {
	configPath         string
	input              string
	logLevel           string
	statsDB            string
	minVisits          int
	minRemaining       int
	length             int
	normalizeThreshold int64
	seed               uint64
	goBack             bool
	validate           bool
}

func newRootCmd() *cobra.Command {
	flags := &generateFlags{}

	rootCmd := &cobra.Command{
		Use:   "dummytext",
		Short: "Generate dummy text with the local statistics of a corpus",
		Long: `dummytext reads a corpus from stdin (or --input), builds an adaptive
variable-order model of its letters and spaces, and prints the number of
model nodes followed by a line of generated text.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	f := rootCmd.Flags()
	f.IntVarP(&flags.minVisits, "min-visits", "s", markov.DefaultMinVisits, "Edge count a transition must exceed before its target is split")
	f.IntVarP(&flags.minRemaining, "min-remaining", "r", markov.DefaultMinVisits, "Target visits beyond the transition needed for a split (default: min-visits)")
	f.IntVarP(&flags.length, "length", "l", 1000, "Number of symbols to generate")
	f.BoolVar(&flags.goBack, "go-back", false, "Return to the root context after every space")
	f.Uint64Var(&flags.seed, "seed", 0, "Seed for reproducible generation (default: random)")
	f.StringVarP(&flags.input, "input", "i", "-", "Corpus file, zstd or gzip compressed files are decoded (default: stdin)")
	f.StringVar(&flags.configPath, "config", "", "JSON or YAML config file, created with defaults if missing")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&flags.statsDB, "stats-db", "", "SQLite file to record the run in")
	f.BoolVar(&flags.validate, "validate", false, "Check every node's counts after training")
	f.Int64Var(&flags.normalizeThreshold, "normalize-threshold", markov.DefaultNormalizeThreshold, "Halve all counts once a node exceeds this many visits (0 disables)")

	rootCmd.AddCommand(newRunsCmd())
	return rootCmd
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, flags *generateFlags) (*Config, error) {
	config, err := LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	config.applyEnv()

	changed := cmd.Flags().Changed
	if changed("min-visits") {
		config.MinVisits = flags.minVisits
	}
	if changed("min-remaining") {
		config.MinRemaining = &flags.minRemaining
	}
	if changed("length") {
		config.Length = flags.length
	}
	if changed("go-back") {
		config.GoBack = flags.goBack
	}
	if changed("seed") {
		config.Seed = &flags.seed
	}
	if changed("log-level") {
		config.LogLevel = flags.logLevel
	}
	if changed("stats-db") {
		config.StatsDB = flags.statsDB
	}
	if changed("validate") {
		config.Validate = flags.validate
	}
	if changed("normalize-threshold") {
		config.NormalizeThreshold = flags.normalizeThreshold
	}

	if err = config.Check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	logLevel, _ := parseLogLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// byteCounter is an io.Writer that only counts.
type byteCounter int64

func (c *byteCounter) Write(p []byte) (int, error) {
	*c += byteCounter(len(p))
	return len(p), nil
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	config, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), config.LogLevel)

	input, err := openInput(flags.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer func(input io.ReadCloser) {
		_ = input.Close()
	}(input)

	graph, err := markov.NewGraph(config.Markov())
	if err != nil {
		return err
	}
	graph.SetLogger(logger)

	started := time.Now()
	hasher := runlog.NewCorpusHasher()
	var inputBytes byteCounter
	if err = graph.Train(ctx, io.TeeReader(input, io.MultiWriter(hasher, &inputBytes))); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if config.Validate {
		if err = graph.Validate(); err != nil {
			return fmt.Errorf("graph invariant violated: %w", err)
		}
		logger.Debug("Graph validated", "nodes", graph.Len())
	}

	var opts []markov.SamplerOption
	if config.Seed != nil {
		opts = append(opts, markov.WithSeed(*config.Seed))
	}
	sampler := markov.NewSampler(graph, opts...)

	out := cmd.OutOrStdout()
	if _, err = fmt.Fprintf(out, "num(nodes): %d\n", graph.Len()); err != nil {
		return err
	}
	if err = sampler.Write(out, config.Length); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if _, err = fmt.Fprintln(out); err != nil {
		return err
	}
	logger.Info("Text generated",
		"length", config.Length,
		"seed", sampler.Seed(),
		"nodes", graph.Len(),
	)

	if config.StatsDB != "" {
		stats := graph.Stats()
		markovConfig := graph.Config()
		run := runlog.Run{
			StartedAt:          started,
			CorpusDigest:       runlog.HexDigest(hasher),
			InputSymbols:       stats.Ingested,
			InputBytes:         int64(inputBytes),
			Nodes:              stats.Nodes,
			Splits:             stats.Splits,
			MinVisits:          markovConfig.MinVisits,
			MinRemaining:       markovConfig.MinRemaining,
			GoBack:             markovConfig.ReturnToRoot,
			NormalizeThreshold: markovConfig.NormalizeThreshold,
			Length:             config.Length,
			Seed:               sampler.Seed(),
		}
		// The text is already out; a failed record is logged, not fatal.
		if err = recordRun(ctx, config.StatsDB, &run, logger); err != nil {
			logger.Error("Failed to record run", "stats_db", config.StatsDB, "error", err)
		}
	}
	return nil
}

func recordRun(ctx context.Context, path string, run *runlog.Run, logger *slog.Logger) error {
	db, err := openStatsDB(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if err = runlog.SetupSchema(db); err != nil {
		return err
	}
	store, err := runlog.NewStore(db)
	if err != nil {
		return err
	}
	defer store.Close()
	store.SetLogger(logger)

	return store.Record(ctx, run)
}

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dummytext:", err)
		stop()
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
