package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/dummytext/pkg/markov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given stdin and arguments and
// returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envLogLevel, "")
	t.Setenv(envStatsDB, "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// splitOutput returns the node count line and the generated line.
func splitOutput(t *testing.T, out string) (string, string) {
	t.Helper()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3, "expected two lines and a trailing newline, got %q", out)
	require.Empty(t, lines[2])
	return lines[0], lines[1]
}

func TestGenerateIsReproducible(t *testing.T) {
	args := []string{"-s", "1", "-r", "0", "-l", "50", "--seed", "7"}
	out, err := execute(t, "aaaa aaaa", args...)
	require.NoError(t, err)

	nodes, text := splitOutput(t, out)
	assert.Equal(t, "num(nodes): 5", nodes)
	assert.Len(t, text, 50)
	assert.Empty(t, strings.Trim(text, "a "))

	again, err := execute(t, "aaaa aaaa", args...)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerateEmptyInput(t *testing.T) {
	out, err := execute(t, "", "-l", "0")
	require.NoError(t, err)
	assert.Equal(t, "num(nodes): 1\n\n", out)

	out, err = execute(t, "")
	require.ErrorIs(t, err, markov.ErrZeroVisits)
	assert.Equal(t, "num(nodes): 1\n", out)
}

func TestGenerateGoBack(t *testing.T) {
	out, err := execute(t, "ab cd", "--go-back", "-s", "1", "-r", "0", "-l", "100", "--seed", "3", "--validate")
	require.NoError(t, err)
	_, text := splitOutput(t, out)
	assert.Len(t, text, 100)
	assert.Empty(t, strings.Trim(text, "abcd "))
}

func TestGenerateDefaultsMinRemaining(t *testing.T) {
	implicit, err := execute(t, "aaaa aaaa", "-s", "1", "-l", "0")
	require.NoError(t, err)
	explicit, err := execute(t, "aaaa aaaa", "-s", "1", "-r", "1", "-l", "0")
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)

	config := DefaultConfig()
	config.MinVisits = 7
	assert.Equal(t, 7, config.Markov().MinRemaining)
	two := 2
	config.MinRemaining = &two
	assert.Equal(t, 2, config.Markov().MinRemaining)
}

func TestConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "non-numeric min visits", args: []string{"-s", "abc"}},
		{name: "non-numeric length", args: []string{"--length", "x"}},
		{name: "zero min visits", args: []string{"-s", "0"}},
		{name: "negative min remaining", args: []string{"-r", "-1"}},
		{name: "negative length", args: []string{"-l", "-5"}},
		{name: "unknown log level", args: []string{"--log-level", "loud"}},
		{name: "unknown flag", args: []string{"--order", "3"}},
		{name: "positional argument", args: []string{"corpus.txt"}},
		{name: "missing input", args: []string{"-i", filepath.Join(t.TempDir(), "missing.txt")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, "some input", tc.args...)
			require.Error(t, err)
			assert.Empty(t, out, "no graph work may happen on a configuration error")
		})
	}

	_, err := execute(t, "x", "-s", "0")
	require.ErrorIs(t, err, markov.ErrInvalidConfig)
}

func TestConfigFile(t *testing.T) {
	expected, err := execute(t, "aaaa aaaa", "-s", "1", "-r", "0", "-l", "30", "--seed", "7")
	require.NoError(t, err)

	dir := t.TempDir()
	files := map[string]string{
		"config.yaml": "min_visits: 1\nmin_remaining: 0\nlength: 30\nseed: 7\n",
		"config.json": `{"min_visits": 1, "min_remaining": 0, "length": 30, "seed": 7}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			out, err := execute(t, "aaaa aaaa", "--config", path)
			require.NoError(t, err)
			assert.Equal(t, expected, out)

			out, err = execute(t, "aaaa aaaa", "--config", path, "-l", "10")
			require.NoError(t, err)
			_, text := splitOutput(t, out)
			assert.Len(t, text, 10, "flags override the config file")
		})
	}
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	for _, name := range []string{"fresh.yaml", "fresh.json"} {
		path := filepath.Join(t.TempDir(), name)
		config, err = LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
		assert.FileExists(t, path, "missing config must be written with defaults")

		config, err = LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config, "written defaults must load back unchanged")
	}

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	_, err = LoadConfig(broken)
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestParseLogLevel(t *testing.T) {
	for name, expected := range map[string]string{"debug": "DEBUG", "INFO": "INFO", "": "INFO", "warn": "WARN", "error": "ERROR"} {
		level, err := parseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, level.String())
	}
	_, err := parseLogLevel("verbose")
	require.ErrorIs(t, err, errUnknownLogLevel)
}

func TestStatsDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for _, seed := range []string{"1", "2"} {
		_, err := execute(t, "aaaa aaaa", "-s", "1", "-r", "0", "-l", "20", "--seed", seed, "--normalize-threshold", "64", "--stats-db", path)
		require.NoError(t, err)
	}

	out, err := execute(t, "", "runs", "--stats-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "s=1 r=0 l=20 n=64")
	assert.Contains(t, out, "2 runs over 1 corpora, 18 symbols ingested, largest graph 5 nodes")

	_, err = execute(t, "", "runs")
	require.Error(t, err, "runs needs a database")
}
