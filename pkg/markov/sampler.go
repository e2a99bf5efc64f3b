package markov

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// ErrZeroVisits is returned when sampling reaches a node that was never
// ingested into.
var ErrZeroVisits = errors.New("cannot sample from a node without visits")

// samplerOptions is used by NewSampler to configure default options.
type samplerOptions struct {
	seed         uint64
	seeded       bool
	returnToRoot bool
	start        int
}

// SamplerOption is a function that configures a Sampler.
type SamplerOption func(*samplerOptions)

// WithSeed makes generation reproducible. Without it a random seed is drawn,
// which can be read back with Sampler.Seed.
func WithSeed(seed uint64) SamplerOption {
	return func(o *samplerOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithReturnToRoot overrides the graph's ReturnToRoot setting for this sampler.
func WithReturnToRoot(enabled bool) SamplerOption {
	return func(o *samplerOptions) { o.returnToRoot = enabled }
}

// WithStart sets the node the walk starts from. Default: the root.
func WithStart(node int) SamplerOption {
	return func(o *samplerOptions) { o.start = node }
}

// Sampler performs a weighted random walk over a Graph. Its cursor persists
// across calls, so consecutive calls continue a single walk.
//
// A Sampler is not safe for concurrent use, and the graph must not be
// ingested into while it is being sampled.
type Sampler struct {
	graph        *Graph
	cursor       int
	returnToRoot bool
	seed         uint64
	rng          *rand.Rand
	logger       *slog.Logger
}

// NewSampler creates a Sampler over g.
func NewSampler(g *Graph, opts ...SamplerOption) *Sampler {
	options := &samplerOptions{
		returnToRoot: g.config.ReturnToRoot,
		start:        Root,
	}
	for _, opt := range opts {
		opt(options)
	}
	if !options.seeded {
		options.seed = rand.Uint64()
	}

	return &Sampler{
		graph:        g,
		cursor:       options.start,
		returnToRoot: options.returnToRoot,
		seed:         options.seed,
		rng:          rand.New(rand.NewPCG(options.seed, options.seed^0x9e3779b97f4a7c15)),
		logger:       g.logger,
	}
}

// SetLogger sets the logger for the Sampler. By default it shares the graph's.
func (s *Sampler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Seed returns the seed driving this sampler.
func (s *Sampler) Seed() uint64 {
	return s.seed
}

// Cursor returns the node the next symbol will be sampled from.
func (s *Sampler) Cursor() int {
	return s.cursor
}

// Next samples one symbol from the current node and moves the cursor along
// the chosen edge.
func (s *Sampler) Next() (Symbol, error) {
	if s.cursor < 0 || s.cursor >= len(s.graph.nodes) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCursor, s.cursor)
	}
	node := &s.graph.nodes[s.cursor]
	if node.Visits <= 0 {
		return 0, fmt.Errorf("%w: node %d", ErrZeroVisits, s.cursor)
	}

	r := s.rng.IntN(node.Visits)
	for i := range node.Edges {
		edge := &node.Edges[i]
		if r < edge.Count {
			sym := Symbol(i)
			s.cursor = edge.Target
			if s.returnToRoot && sym == SeparatorSymbol {
				s.cursor = Root
			}
			return sym, nil
		}
		r -= edge.Count
	}
	return 0, &InvariantError{Node: s.cursor, Visits: node.Visits, EdgeSum: node.edgeSum(), Target: -1}
}

// Generate samples exactly n symbols.
func (s *Sampler) Generate(n int) ([]Symbol, error) {
	symbols := make([]Symbol, 0, max(n, 0))
	for range n {
		sym, err := s.Next()
		if err != nil {
			return symbols, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

// GenerateString samples n symbols and decodes them into a string.
func (s *Sampler) GenerateString(n int) (string, error) {
	var builder strings.Builder
	builder.Grow(max(n, 0))
	for range n {
		sym, err := s.Next()
		if err != nil {
			return builder.String(), err
		}
		builder.WriteRune(Decode(sym))
	}
	return builder.String(), nil
}

// Write samples n symbols and writes them, decoded, to w.
func (s *Sampler) Write(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	for range n {
		sym, err := s.Next()
		if err != nil {
			_ = bw.Flush()
			return err
		}
		if _, err = bw.WriteRune(Decode(sym)); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	s.logger.Debug("Generation completed",
		slog.Int("length", n),
		slog.Int("cursor", s.cursor),
	)
	return nil
}
