package markov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Train reads text from r until EOF, encodes it and ingests every symbol at
// the graph's cursor. Calling Train again continues from where the previous
// call left the cursor. The context is checked periodically so long inputs
// can be abandoned.
func (g *Graph) Train(ctx context.Context, r io.Reader) error {
	// ctxCheckInterval is how many symbols are ingested between context checks.
	const ctxCheckInterval = 4096

	stream := NewSymbolStream(r)
	splitsBefore := g.splits

	for {
		if stream.Symbols()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		s, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if err = g.Feed(s); err != nil {
			return fmt.Errorf("ingesting symbol %d: %w", stream.Symbols(), err)
		}
	}

	g.logger.InfoContext(ctx, "Training completed",
		slog.Int64("symbols", stream.Symbols()),
		slog.String("input_size", humanize.Bytes(uint64(stream.Bytes()))),
		slog.Int("nodes", len(g.nodes)),
		slog.Int64("splits", g.splits-splitsBefore),
		slog.Int64("normalizations", g.normalizations),
	)
	return nil
}

// TrainString is a convenience wrapper around Feed for in-memory text.
func (g *Graph) TrainString(text string) error {
	for _, c := range text {
		if err := g.Feed(Encode(c)); err != nil {
			return err
		}
	}
	return nil
}
