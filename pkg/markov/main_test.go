package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupGraph builds a graph with the given thresholds and trains it on text.
func setupGraph(t testing.TB, minVisits, minRemaining int, returnToRoot bool, text string) *Graph {
	t.Helper()
	config := DefaultConfig()
	config.MinVisits = minVisits
	config.MinRemaining = minRemaining
	config.ReturnToRoot = returnToRoot

	g, err := NewGraph(config)
	require.NoError(t, err, "NewGraph()")
	require.NoError(t, g.TrainString(text), "TrainString()")
	require.NoError(t, g.Validate(), "graph invariant after training")
	return g
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = strings.Repeat("this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. ", 400)
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
