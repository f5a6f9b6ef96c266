package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"expenses/internal/core"
)

// JSONFile keeps the collection as an indented JSON array in a single file.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Location() string { return f.path }

func (f *JSONFile) Close() error { return nil }

// Load implements Snapshotter. A missing file yields (nil, nil).
func (f *JSONFile) Load(ctx context.Context) ([]core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "Expense file not found, starting empty", "path", f.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	// The file must hold an array; a bare null would otherwise decode as empty.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s: top-level value is not an array", ErrMalformedStorage, f.path)
	}

	var expenses []core.Expense
	if err := json.Unmarshal(data, &expenses); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedStorage, f.path, err)
	}
	if err := checkUniqueIDs(expenses); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedStorage, f.path, err)
	}

	slog.DebugContext(ctx, "Expense file loaded", "path", f.path, "count", len(expenses))
	return expenses, nil
}

// Save implements Snapshotter. The new content goes to a temporary file in
// the same directory which is synced and then renamed over the target.
func (f *JSONFile) Save(ctx context.Context, expenses []core.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(expenses); err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	committed = true

	slog.DebugContext(ctx, "Expense file saved", "path", f.path, "count", len(expenses))
	return nil
}
