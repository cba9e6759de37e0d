package agent

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/hoangsonww/freq/config"
	"github.com/hoangsonww/freq/internal/compression"
	"github.com/hoangsonww/freq/internal/counter"
	errs "github.com/hoangsonww/freq/internal/errors"
	"github.com/hoangsonww/freq/internal/history"
	"github.com/hoangsonww/freq/internal/monitoring"
	"github.com/hoangsonww/freq/internal/reader"
)

// Agent runs counting pipelines over input sources. Sources are
// processed sequentially; each gets its own counter and its own
// producer/consumer pair, and per-source totals are summed.
type Agent struct {
	cfg     *config.Config
	log     *monitoring.Logger
	metrics *monitoring.Metrics
	hist    *history.Store
}

func New(cfg *config.Config) (*Agent, error) {
	a := &Agent{
		cfg:     cfg,
		log:     monitoring.NewLogger(cfg.Monitoring.LogLevel, cfg.Monitoring.LogFormat),
		metrics: monitoring.GetMetrics(),
	}
	if cfg.History.Enabled {
		h, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, errs.NewHistoryFailedError(err)
		}
		a.hist = h
	}
	return a, nil
}

// Close releases the history database, if one is open.
func (a *Agent) Close() error {
	if a.hist != nil {
		return a.hist.Close()
	}
	return nil
}

// Count counts occurrences of pattern across the given paths. An empty
// path list means stdin. The returned total covers every source counted
// before an error, if any; input errors are fatal to the run, not
// retried.
func (a *Agent) Count(ctx context.Context, pattern []byte, paths []string) (uint64, error) {
	if len(pattern) == 0 {
		return 0, errs.NewEmptyPatternError()
	}

	if len(paths) == 0 {
		return a.countSource(ctx, pattern, "-", os.Stdin)
	}

	var total uint64
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			a.metrics.RecordInputError()
			return total, errs.NewInputOpenFailedError(path, err)
		}
		n, err := a.countSource(ctx, pattern, path, f)
		f.Close()
		total += n
		if err != nil {
			return total, err
		}
	}

	a.log.WithFields(a.metrics.Summary()).Debug("run complete")
	return total, nil
}

// countSource runs one producer/consumer pipeline: a reader goroutine
// fills a bounded channel with chunks, this goroutine feeds them to a
// fresh counter. Channel closure is the end-of-stream signal.
func (a *Agent) countSource(ctx context.Context, pattern []byte, name string, r io.Reader) (uint64, error) {
	start := time.Now()

	input := io.Reader(r)
	if auto := a.cfg.Input.AutoDecompress; auto == nil || *auto {
		dr, err := compression.Detect(r)
		if err != nil {
			a.metrics.RecordInputError()
			return 0, errs.NewInputReadFailedError(name, err)
		}
		defer dr.Close()
		if dr.Type != compression.None {
			a.log.WithFields(map[string]interface{}{
				"input":       name,
				"compression": dr.Type.String(),
			}).Debug("decompressing input")
		}
		input = dr
	}

	c, err := counter.New(pattern)
	if err != nil {
		return 0, errs.NewEmptyPatternError()
	}

	var opts []reader.Option
	if a.cfg.Limits.EnableRateLimit {
		opts = append(opts, reader.WithLimiter(
			rate.NewLimiter(rate.Limit(a.cfg.Limits.BytesPerSecond), a.cfg.Limits.Burst)))
	}
	src := reader.New(a.cfg.Reader.BufferSize, a.cfg.Reader.QueueDepth, opts...)
	src.Start(ctx, input)

	var bytesRead uint64
	for chunk := range src.Chunks() {
		bytesRead += uint64(len(chunk))
		a.metrics.RecordChunk(len(chunk))
		c.Feed(chunk)
	}
	if err := src.Err(); err != nil {
		a.metrics.RecordInputError()
		return c.Total(), errs.NewInputReadFailedError(name, err)
	}

	elapsed := time.Since(start)
	a.metrics.RecordSource(c.Total(), bytesRead, elapsed)
	a.log.WithFields(map[string]interface{}{
		"input":    name,
		"count":    c.Total(),
		"bytes":    bytesRead,
		"duration": elapsed.String(),
	}).Info("source scanned")

	if a.hist != nil {
		rec := history.Record{
			Pattern:  string(pattern),
			Input:    name,
			Count:    c.Total(),
			Bytes:    bytesRead,
			Duration: elapsed,
		}
		if err := a.hist.Append(rec); err != nil {
			return c.Total(), errs.NewHistoryFailedError(err)
		}
	}

	return c.Total(), nil
}

// History returns recent run records, newest first. It is empty when
// history is disabled.
func (a *Agent) History(limit int) ([]history.Record, error) {
	if a.hist == nil {
		return nil, nil
	}
	return a.hist.List(limit)
}
