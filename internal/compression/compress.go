package compression

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Type represents the compression algorithm of an input
type Type int

const (
	None Type = iota
	Gzip
	Zstd
)

// String returns the name of the compression type
func (t Type) String() string {
	switch t {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Reader is a detected, possibly-decompressed input stream
type Reader struct {
	io.Reader
	Type   Type
	closer io.Closer
}

// Close releases the decoder resources, if any
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// Detect sniffs the leading magic bytes of r and wraps it with the
// matching decompressor. Unrecognized inputs pass through untouched, so
// plain data is never rejected. The returned Reader replaces r: the
// sniffed bytes are already buffered inside it.
func Detect(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(4)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to sniff input: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &Reader{Reader: gr, Type: Gzip, closer: gr}, nil

	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &Reader{Reader: zr, Type: Zstd, closer: zstdCloser{zr}}, nil

	default:
		return &Reader{Reader: br, Type: None}, nil
	}
}

// Compress compresses data with the given type. Used by tests and tools
// that prepare fixtures; the counting path only ever decompresses.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case None:
		return data, nil
	case Gzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to write gzip data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}
		return buf.Bytes(), nil
	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		out := enc.EncodeAll(data, make([]byte, 0, len(data)))
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %d", t)
	}
}
