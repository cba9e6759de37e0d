package agent_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hoangsonww/freq/config"
	"github.com/hoangsonww/freq/internal/agent"
	"github.com/hoangsonww/freq/internal/compression"
	errs "github.com/hoangsonww/freq/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	// Small buffers so boundary handling is exercised even on tiny files.
	cfg.Reader.BufferSize = 8
	return cfg
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCountSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hay.txt", []byte("haystackneedlehaystackneedle"))

	a, err := agent.New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	total, err := a.Count(context.Background(), []byte("needle"), []string{path})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2, got %d", total)
	}
}

func TestCountMultipleFilesSummed(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.txt", []byte("needle"))
	p2 := writeFile(t, dir, "b.txt", []byte("needleneedle"))

	a, err := agent.New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	total, err := a.Count(context.Background(), []byte("needle"), []string{p1, p2})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3, got %d", total)
	}
}

func TestCountAcrossFilesNotJoined(t *testing.T) {
	// Each source gets its own counter: a needle split across two files
	// must not be counted.
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.txt", []byte("xxneed"))
	p2 := writeFile(t, dir, "b.txt", []byte("lexx"))

	a, err := agent.New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	total, err := a.Count(context.Background(), []byte("needle"), []string{p1, p2})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}
}

func TestCountCompressedInput(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("the needle hides in compressed hay: needle needle")

	for _, typ := range []compression.Type{compression.Gzip, compression.Zstd} {
		t.Run(typ.String(), func(t *testing.T) {
			compressed, err := compression.Compress(typ, payload)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			path := writeFile(t, dir, "hay."+typ.String(), compressed)

			a, err := agent.New(testConfig(t))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer a.Close()

			total, err := a.Count(context.Background(), []byte("needle"), []string{path})
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if total != 3 {
				t.Fatalf("expected 3, got %d", total)
			}
		})
	}
}

func TestEmptyPatternRejected(t *testing.T) {
	a, err := agent.New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	_, err = a.Count(context.Background(), nil, []string{"irrelevant"})
	if err == nil {
		t.Fatal("expected an error for an empty pattern")
	}
	if errs.GetErrorCode(err) != errs.ErrCodeEmptyPattern {
		t.Fatalf("expected EMPTY_PATTERN, got %v", err)
	}
}

func TestMissingFileFatal(t *testing.T) {
	a, err := agent.New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	_, err = a.Count(context.Background(), []byte("x"), []string{"/no/such/file"})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if errs.GetErrorCode(err) != errs.ErrCodeInputOpenFailed {
		t.Fatalf("expected INPUT_OPEN_FAILED, got %v", err)
	}
	var fe *errs.FreqError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a FreqError, got %T", err)
	}
}

func TestHistoryRecorded(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hay.txt", []byte("ababa"))

	cfg := testConfig(t)
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "history.db")

	a, err := agent.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	total, err := a.Count(context.Background(), []byte("aba"), []string{path})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 overlapping matches, got %d", total)
	}

	records, err := a.History(0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Pattern != "aba" || rec.Count != 2 || rec.Bytes != 5 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
