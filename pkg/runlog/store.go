package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SetupSchema creates the run table in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaRuns = `
CREATE TABLE IF NOT EXISTS dummytext_runs (
    run_id               TEXT PRIMARY KEY,
    started_at           INTEGER NOT NULL,
    corpus_digest        TEXT NOT NULL,
    input_symbols        INTEGER NOT NULL,
    input_bytes          INTEGER NOT NULL,
    nodes                INTEGER NOT NULL,
    splits               INTEGER NOT NULL,
    min_visits           INTEGER NOT NULL,
    min_remaining        INTEGER NOT NULL,
    go_back              INTEGER NOT NULL,
    normalize_threshold  INTEGER NOT NULL,
    output_length        INTEGER NOT NULL,
    seed                 TEXT NOT NULL
);
`
	const indexStarted = `CREATE INDEX IF NOT EXISTS dummytext_runs_started ON dummytext_runs (started_at);`

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}
	if _, err = tx.Exec(indexStarted); err != nil {
		return fmt.Errorf("could not create runs index: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Run describes one ingest-and-generate run.
type Run struct {
	ID                 uuid.UUID
	StartedAt          time.Time
	CorpusDigest       string // hex BLAKE3 digest of the raw input bytes
	InputSymbols       int64
	InputBytes         int64
	Nodes              int
	Splits             int64
	MinVisits          int
	MinRemaining       int
	GoBack             bool
	NormalizeThreshold int64
	Length             int
	Seed               uint64
}

// Summary holds totals over every recorded run.
type Summary struct {
	Runs            int64
	DistinctCorpora int64
	TotalSymbols    int64
	MaxNodes        int64
}

// Store records and lists runs. It holds prepared statements and must be
// closed when no longer needed.
type Store struct {
	db            *sql.DB
	stmtInsertRun *sql.Stmt
	stmtGetRun    *sql.Stmt
	stmtRecent    *sql.Stmt
	stmtSummary   *sql.Stmt
	logger        *slog.Logger
}

const runColumns = `run_id, started_at, corpus_digest, input_symbols, input_bytes, nodes, splits, min_visits, min_remaining, go_back, normalize_threshold, output_length, seed`

// NewStore prepares all statements against db. SetupSchema must have been
// called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO dummytext_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtGetRun, err := db.Prepare(`SELECT ` + runColumns + ` FROM dummytext_runs WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtRecent, err := db.Prepare(`SELECT ` + runColumns + ` FROM dummytext_runs ORDER BY started_at DESC, run_id LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtSummary, err := db.Prepare(`SELECT COUNT(*), COUNT(DISTINCT corpus_digest), COALESCE(SUM(input_symbols), 0), COALESCE(MAX(nodes), 0) FROM dummytext_runs;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:            db,
		stmtInsertRun: stmtInsertRun,
		stmtGetRun:    stmtGetRun,
		stmtRecent:    stmtRecent,
		stmtSummary:   stmtSummary,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtInsertRun.Close()
	_ = s.stmtGetRun.Close()
	_ = s.stmtRecent.Close()
	_ = s.stmtSummary.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Record inserts a run. A zero ID is replaced with a fresh random one and a
// zero StartedAt with the current time; the stored values are written back
// into run.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.stmtInsertRun.ExecContext(ctx,
		run.ID.String(),
		run.StartedAt.UnixNano(),
		run.CorpusDigest,
		run.InputSymbols,
		run.InputBytes,
		run.Nodes,
		run.Splits,
		run.MinVisits,
		run.MinRemaining,
		run.GoBack,
		run.NormalizeThreshold,
		run.Length,
		strconv.FormatUint(run.Seed, 10),
	)
	if err != nil {
		return fmt.Errorf("could not record run %s: %w", run.ID, err)
	}

	s.logger.DebugContext(ctx, "Run recorded",
		slog.String("run_id", run.ID.String()),
		slog.String("corpus_digest", run.CorpusDigest),
		slog.Int("nodes", run.Nodes),
	)
	return nil
}

// Get returns the run with the given id, or sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	return scanRun(s.stmtGetRun.QueryRowContext(ctx, id.String()))
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.stmtRecent.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Summary returns totals over every recorded run.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	err := s.stmtSummary.QueryRowContext(ctx).Scan(
		&summary.Runs,
		&summary.DistinctCorpora,
		&summary.TotalSymbols,
		&summary.MaxNodes,
	)
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		id, seed  string
		startedAt int64
	)
	err := row.Scan(
		&id,
		&startedAt,
		&run.CorpusDigest,
		&run.InputSymbols,
		&run.InputBytes,
		&run.Nodes,
		&run.Splits,
		&run.MinVisits,
		&run.MinRemaining,
		&run.GoBack,
		&run.NormalizeThreshold,
		&run.Length,
		&seed,
	)
	if err != nil {
		return Run{}, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("stored run id %q: %w", id, err)
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Run{}, fmt.Errorf("stored seed %q: %w", seed, err)
	}
	run.StartedAt = time.Unix(0, startedAt)
	return run, nil
}
