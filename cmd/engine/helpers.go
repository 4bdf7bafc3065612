package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"companyclean-engine/internal/config"
)

// storePath resolves the configured database against the data dir. Empty
// means no database.
func storePath(cfg config.Config) string {
	p := cfg.Store.Path
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFileJSON writes v to path, or to stdout for "-". The file is written
// under an advisory lock on path+".lock" and renamed into place, so
// concurrent runs never interleave or leave a half-written file behind.
func writeFileJSON(ctx context.Context, path string, v any) error {
	if path == "" || path == "-" {
		return writeJSON(os.Stdout, v)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	lctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ok, err := lock.TryLockContext(lctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: held by another process", path)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// readInputs reads every named file; no names (or "-") means stdin.
func readInputs(names []string) ([][]byte, error) {
	if len(names) == 0 {
		names = []string{"-"}
	}
	out := make([][]byte, 0, len(names))
	for _, n := range names {
		var (
			b   []byte
			err error
		)
		if n == "-" {
			b, err = io.ReadAll(os.Stdin)
		} else {
			b, err = os.ReadFile(n)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		out = append(out, b)
	}
	return out, nil
}
