// Package reader turns one or more io.Readers into an ordered stream of
// byte chunks delivered over a bounded channel. One producer goroutine
// owns the reads; the channel capacity caps the number of in-flight
// chunks, so the producer blocks while the consumer is behind and memory
// stays bounded regardless of input size.
package reader

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const (
	// DefaultChunkSize is the read block size when none is configured.
	DefaultChunkSize = 1 << 20

	// DefaultQueueDepth is the channel capacity: a single-slot handoff.
	DefaultQueueDepth = 1
)

// Source reads inputs sequentially in fixed-size blocks and hands them
// to a single consumer. Channel closure is the end-of-stream signal; a
// zero-byte read is never forwarded as a chunk.
type Source struct {
	chunkSize int
	out       chan []byte
	limiter   *rate.Limiter
	err       error
}

// Option configures a Source.
type Option func(*Source)

// WithLimiter throttles the read bandwidth. The limiter's burst must be
// at least the chunk size.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Source) { s.limiter = l }
}

// New creates a Source. Non-positive sizes fall back to the defaults.
func New(chunkSize, queueDepth int, opts ...Option) *Source {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if queueDepth < 1 {
		queueDepth = DefaultQueueDepth
	}
	s := &Source{
		chunkSize: chunkSize,
		out:       make(chan []byte, queueDepth),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chunks returns the delivery channel. Each chunk is freshly allocated
// and owned by the receiver once delivered.
func (s *Source) Chunks() <-chan []byte {
	return s.out
}

// Err reports the first read error, if any. It is valid only after the
// Chunks channel has been closed.
func (s *Source) Err() error {
	return s.err
}

// Start launches the producer goroutine. The inputs are read in order;
// a read error stops the stream early and is surfaced through Err.
func (s *Source) Start(ctx context.Context, inputs ...io.Reader) {
	go s.run(ctx, inputs)
}

func (s *Source) run(ctx context.Context, inputs []io.Reader) {
	defer close(s.out)
	for _, r := range inputs {
		for {
			buf := make([]byte, s.chunkSize)
			n, err := r.Read(buf)
			if n > 0 {
				if s.limiter != nil {
					if werr := s.limiter.WaitN(ctx, n); werr != nil {
						s.err = werr
						return
					}
				}
				s.out <- buf[:n]
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				s.err = err
				return
			}
		}
	}
}
