// Package counter implements streaming occurrence counting of a fixed
// literal byte pattern over a chunked input stream. The counter keeps at
// most len(needle)-1 bytes of state between chunks, so arbitrarily large
// inputs can be scanned in constant memory while still catching matches
// that straddle a chunk boundary.
package counter

import (
	"bytes"
	"errors"
)

// ErrEmptyNeedle is returned by New when the pattern is empty.
var ErrEmptyNeedle = errors.New("needle must not be empty")

// Counter counts occurrences of a single needle across a stream of byte
// chunks. Occurrences are counted at every start position, so overlapping
// matches (needle "aba" in "ababa") are all reported. The final total is
// independent of how the stream was split into chunks.
//
// A Counter is not safe for concurrent use; it is meant to be owned by
// the single goroutine consuming the chunk stream.
type Counter struct {
	needle []byte
	carry  []byte // suffix of seen input that is still a prefix of the needle
	window []byte // scratch for the boundary scan, at most 2n-2 bytes
	count  uint64
}

// New creates a Counter for the given needle. The needle is copied, so
// the caller may reuse its buffer. An empty needle is a configuration
// error and is rejected here, before any data is processed.
func New(needle []byte) (*Counter, error) {
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}
	n := len(needle)
	return &Counter{
		needle: append([]byte(nil), needle...),
		carry:  make([]byte, 0, n-1),
		window: make([]byte, 0, 2*n-2),
	}, nil
}

// Total returns the number of occurrences counted so far.
func (c *Counter) Total() uint64 {
	return c.count
}

// Write feeds p to the counter and never fails, so a Counter can be the
// destination of io.Copy.
func (c *Counter) Write(p []byte) (int, error) {
	c.Feed(p)
	return len(p), nil
}

// Feed consumes the next chunk of the stream. The chunk is fully
// accounted for when Feed returns: its bytes are either counted,
// discarded, or copied into the carry buffer. No reference to chunk is
// retained. An empty chunk is a no-op.
func (c *Counter) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	n := len(c.needle)

	// Single-byte needles need no carry state and bytes.Count is
	// vectorized on the common platforms.
	if n == 1 {
		c.count += uint64(bytes.Count(chunk, c.needle))
		return
	}

	if len(c.carry) > 0 {
		c.scanBoundary(chunk)
	}

	// Occurrences starting inside the chunk itself. Restarting one byte
	// past each match start keeps overlapping occurrences visible.
	for off := 0; ; {
		i := bytes.Index(chunk[off:], c.needle)
		if i < 0 {
			break
		}
		c.count++
		off += i + 1
	}

	c.retain(chunk)
}

// scanBoundary counts occurrences whose start lies inside the carry
// buffer. The window is the carry plus at most n-1 leading chunk bytes,
// 2n-2 bytes total, so a first-byte scan over the carry portion is
// cheaper than a general substring search here.
func (c *Counter) scanBoundary(chunk []byte) {
	n := len(c.needle)
	head := n - 1
	if head > len(chunk) {
		head = len(chunk)
	}
	w := append(c.window[:0], c.carry...)
	w = append(w, chunk[:head]...)
	c.window = w

	for off := 0; off < len(c.carry); off++ {
		i := bytes.IndexByte(w[off:len(c.carry)], c.needle[0])
		if i < 0 {
			return
		}
		off += i
		if bytes.HasPrefix(w[off:], c.needle) {
			c.count++
		}
	}
}

// retain replaces the carry buffer after a chunk has been scanned. The
// candidates for the next boundary are the last n-1 bytes of the input
// seen so far; of those, only the longest suffix that is still a prefix
// of the needle can ever complete a match, so everything before it is
// dropped. A start position that was already counted always ends at
// least n bytes back and can never re-enter the carry.
func (c *Counter) retain(chunk []byte) {
	keep := len(c.needle) - 1
	if len(chunk) >= keep {
		c.carry = append(c.carry[:0], chunk[len(chunk)-keep:]...)
	} else {
		c.carry = append(c.carry, chunk...)
		if over := len(c.carry) - keep; over > 0 {
			c.carry = c.carry[:copy(c.carry, c.carry[over:])]
		}
	}
	if s := prefixStart(c.needle, c.carry); s > 0 {
		c.carry = c.carry[:copy(c.carry, c.carry[s:])]
	}
}

// prefixStart returns the smallest index s such that buf[s:] is a prefix
// of needle, or len(buf) when no suffix qualifies.
func prefixStart(needle, buf []byte) int {
	for s := range buf {
		if bytes.HasPrefix(needle, buf[s:]) {
			return s
		}
	}
	return len(buf)
}
