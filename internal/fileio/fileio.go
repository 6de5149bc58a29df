// Package fileio opens plain, gzip and zstd compressed text files.
package fileio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Reader is a buffered, transparently decompressed file reader.
type Reader struct {
	*bufio.Reader
	file   *os.File
	decomp io.Closer
}

// Open opens path for reading. Gzip and zstd content is detected from the
// magic bytes, not the file extension. Use "-" for stdin.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader wraps an already open stream.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReader(src)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read magic bytes: %w", err)
	}

	r := &Reader{}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.decomp = gz
		r.Reader = bufio.NewReader(gz)
	case bytes.HasPrefix(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		rc := dec.IOReadCloser()
		r.decomp = rc
		r.Reader = bufio.NewReader(rc)
	default:
		r.Reader = br
	}
	return r, nil
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	if r.decomp != nil {
		r.decomp.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
