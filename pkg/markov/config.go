package markov

import (
	"errors"
	"fmt"
)

const (
	// DefaultMinVisits is the default edge count a transition must exceed
	// before its target is considered for a split.
	DefaultMinVisits = 4
	// DefaultNormalizeThreshold is the node visit count above which all counts
	// in the graph are halved.
	DefaultNormalizeThreshold int64 = 1 << 40
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the tunables shared by a Graph and the Samplers built on it.
// It is built once at startup and never changed afterwards.
type Config struct {
	// MinVisits is the edge count a transition must exceed to trigger a split.
	MinVisits int
	// MinRemaining is the number of target visits, not explained by the
	// transition itself, that must be exceeded to trigger a split.
	MinRemaining int
	// ReturnToRoot resets the cursor to the root whenever the separator symbol
	// is ingested or generated.
	ReturnToRoot bool
	// NormalizeThreshold halves every count in the graph once a node's visit
	// count grows beyond it. 0 disables normalization.
	NormalizeThreshold int64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MinVisits:          DefaultMinVisits,
		MinRemaining:       DefaultMinVisits,
		ReturnToRoot:       false,
		NormalizeThreshold: DefaultNormalizeThreshold,
	}
}

// Validate checks that the configuration can drive a graph.
// MinVisits below 1 would allow splits that hand a new node zero visits.
func (c Config) Validate() error {
	if c.MinVisits < 1 {
		return fmt.Errorf("%w: min visits must be at least 1, got %d", ErrInvalidConfig, c.MinVisits)
	}
	if c.MinRemaining < 0 {
		return fmt.Errorf("%w: min remaining must not be negative, got %d", ErrInvalidConfig, c.MinRemaining)
	}
	if c.NormalizeThreshold < 0 || c.NormalizeThreshold == 1 {
		return fmt.Errorf("%w: normalize threshold must be 0 or at least 2, got %d", ErrInvalidConfig, c.NormalizeThreshold)
	}
	return nil
}
