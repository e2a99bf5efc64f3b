package runlog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestDB creates a fresh SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "runs.db")
	db, err := sql.Open("sqlite", dbFile)
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SetupSchema(db), "failed to set up schema")
	require.NoError(t, SetupSchema(db), "SetupSchema must be idempotent")

	s, err := NewStore(db)
	require.NoError(t, err, "NewStore()")
	t.Cleanup(s.Close)
	return db, s
}

func TestRecordAndGet(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	run := Run{
		StartedAt:          started,
		CorpusDigest:       CorpusDigest([]byte("aaaa aaaa")),
		InputSymbols:       9,
		InputBytes:         9,
		Nodes:              5,
		Splits:             4,
		MinVisits:          1,
		MinRemaining:       0,
		GoBack:             true,
		NormalizeThreshold: 1 << 40,
		Length:             1000,
		Seed:               1<<64 - 1,
	}
	require.NoError(t, s.Record(ctx, &run))
	require.NotEqual(t, uuid.Nil, run.ID, "Record must assign an id")

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, started.Equal(got.StartedAt))
	got.StartedAt = run.StartedAt
	require.Equal(t, run, got)

	_, err = s.Get(ctx, uuid.New())
	require.True(t, errors.Is(err, sql.ErrNoRows), "expected sql.ErrNoRows, got %v", err)

	require.Error(t, s.Record(ctx, &run), "duplicate run id must be rejected")
}

func TestRecordFillsStartTime(t *testing.T) {
	_, s := setupTestDB(t)
	run := Run{CorpusDigest: CorpusDigest(nil)}
	require.NoError(t, s.Record(context.Background(), &run))
	require.WithinDuration(t, time.Now(), run.StartedAt, time.Minute)
}

func TestRecentAndSummary(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, Summary{}, summary)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	digests := []string{CorpusDigest([]byte("a")), CorpusDigest([]byte("b")), CorpusDigest([]byte("a"))}
	for i, digest := range digests {
		run := Run{
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			CorpusDigest: digest,
			InputSymbols: int64(10 * (i + 1)),
			Nodes:        i + 3,
		}
		require.NoError(t, s.Record(ctx, &run))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 5, runs[0].Nodes, "newest run first")
	require.Equal(t, 4, runs[1].Nodes)

	summary, err = s.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, Summary{Runs: 3, DistinctCorpora: 2, TotalSymbols: 60, MaxNodes: 5}, summary)
}

func TestCorpusDigest(t *testing.T) {
	h := NewCorpusHasher()
	_, _ = h.Write([]byte("split "))
	_, _ = h.Write([]byte("me"))
	require.Equal(t, CorpusDigest([]byte("split me")), HexDigest(h))
	require.Len(t, CorpusDigest(nil), 64)
	require.Equal(t, strings.ToLower(CorpusDigest([]byte("x"))), CorpusDigest([]byte("x")))
	require.NotEqual(t, CorpusDigest([]byte("x")), CorpusDigest([]byte("y")))
}
