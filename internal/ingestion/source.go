package ingestion

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tse-eval/resampler/internal/core/series"
)

// Source produces a time-indexed table.
type Source interface {
	Load(ctx context.Context) (*series.Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*series.Table, error)

func (f SourceFunc) Load(ctx context.Context) (*series.Table, error) { return f(ctx) }

const snapshotVersion = 1

type snapshot struct {
	Version int
	Table   *series.Table
}

// CachedSource reads a snapshot of Source from Path when it exists and
// writes one after loading otherwise. A present snapshot is trusted as is;
// delete it when the source changes.
type CachedSource struct {
	Source Source
	Path   string
}

func (c CachedSource) Load(ctx context.Context) (*series.Table, error) {
	if c.Path == "" {
		return c.Source.Load(ctx)
	}

	start := time.Now()
	tbl, err := ReadSnapshot(c.Path)
	switch {
	case err == nil:
		slog.Info("[Ingestion] Read snapshot", "path", c.Path, "rows", tbl.Len(), "took", time.Since(start))
		return tbl, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	tbl, err = c.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := WriteSnapshot(c.Path, tbl); err != nil {
		return nil, err
	}
	slog.Info("[Ingestion] Wrote snapshot", "path", c.Path, "rows", tbl.Len())
	return tbl, nil
}

// ReadSnapshot decodes a table snapshot.
func ReadSnapshot(path string) (*series.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return decodeSnapshot(f)
}

func decodeSnapshot(r io.Reader) (*series.Table, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", snap.Version)
	}
	if snap.Table == nil {
		snap.Table = &series.Table{}
	}
	if err := snap.Table.Validate(); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Table, nil
}

// WriteSnapshot encodes tbl to path through a temporary file and rename.
func WriteSnapshot(path string, tbl *series.Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snapshot{Version: snapshotVersion, Table: tbl}); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
