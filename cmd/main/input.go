package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// stackedReader closes every layer of a decoded input in order.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openInput opens the corpus at path, or stdin when path is empty or "-".
// zstd and gzip streams are recognized by their magic bytes and decoded
// transparently.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	var src io.ReadCloser
	if path == "" || path == "-" {
		src = io.NopCloser(stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		src = f
	}

	r, err := decodeInput(src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return r, nil
}

func decodeInput(src io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	// A short or empty input simply yields fewer bytes.
	magic, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd input: %w", err)
		}
		return &stackedReader{
			Reader:  dec,
			closers: []func() error{func() error { dec.Close(); return nil }, src.Close},
		}, nil
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip input: %w", err)
		}
		return &stackedReader{Reader: gz, closers: []func() error{gz.Close, src.Close}}, nil
	default:
		return &stackedReader{Reader: br, closers: []func() error{src.Close}}, nil
	}
}
