package markov

import (
	"context"
	"log/slog"
)

// Stream samples n symbols in a goroutine and delivers them on the returned
// channel. The channel is closed once generation is complete, sampling fails,
// or the context is cancelled. The sampler must not be used by anything else
// until the channel is closed.
func (s *Sampler) Stream(ctx context.Context, n int) <-chan Symbol {
	symbolChan := make(chan Symbol)

	go func() {
		defer close(symbolChan)

		for i := 0; i < n; i++ {
			sym, err := s.Next()
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to sample symbol for stream",
					slog.Int("position", i),
					slog.Any("error", err),
				)
				return
			}
			select {
			case <-ctx.Done():
				s.logger.DebugContext(ctx, "Generation stream cancelled by context",
					slog.Int("position", i),
				)
				return
			case symbolChan <- sym:
			}
		}
	}()

	return symbolChan
}
