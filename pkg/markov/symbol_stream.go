package markov

import (
	"bufio"
	"io"
)

// SymbolStream is a stateful reader that turns a stream of UTF-8 text into
// symbols, one at a time.
type SymbolStream struct {
	reader  *bufio.Reader
	symbols int64
	bytes   int64
}

// NewSymbolStream returns a SymbolStream reading from r.
func NewSymbolStream(r io.Reader) *SymbolStream {
	return &SymbolStream{reader: bufio.NewReader(r)}
}

// Next returns the next symbol from the stream. When the stream is exhausted
// it returns io.EOF. Any other error comes from the underlying reader.
// Invalid UTF-8 decodes to the replacement character and therefore to the
// separator symbol.
func (s *SymbolStream) Next() (Symbol, error) {
	c, size, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	s.symbols++
	s.bytes += int64(size)
	return Encode(c), nil
}

// Symbols returns how many symbols have been read so far.
func (s *SymbolStream) Symbols() int64 {
	return s.symbols
}

// Bytes returns how many bytes of input have been consumed so far.
func (s *SymbolStream) Bytes() int64 {
	return s.bytes
}
