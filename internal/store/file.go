package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/logging"
)

// DocExt is the extension of exhibition documents written by File.
const DocExt = ".json"

// File stores each exhibition as an indented JSON document in a directory.
type File struct {
	mutations

	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// NewFile creates dir if needed and returns an adapter rooted there.
func NewFile(dir string, schema *exhibition.Schema, logger *zap.Logger) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store needs a directory")
	}
	// The watcher reports absolute paths.
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	logger = logging.OrNop(logger)
	f := &File{dir: dir, logger: logger, written: make(map[string][sha256.Size]byte)}
	f.mutations = newMutations(schema, logger, f.update)
	return f, nil
}

// Dir returns the store directory.
func (f *File) Dir() string { return f.dir }

// Path returns the document path for an exhibition id.
func (f *File) Path(eventID string) string {
	return filepath.Join(f.dir, eventID+DocExt)
}

func (f *File) Load(ctx context.Context, eventID string) (*exhibition.Exhibition, error) {
	if err := checkID(eventID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(ctx, eventID)
}

func (f *File) read(ctx context.Context, eventID string) (*exhibition.Exhibition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(eventID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read exhibition: %w", err)
	}
	var ex exhibition.Exhibition
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Path(eventID), err)
	}
	return &ex, nil
}

func (f *File) Save(ctx context.Context, ex *exhibition.Exhibition) error {
	if err := checkID(ex.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(ex)
}

// write replaces the document through a temp file and rename so readers
// never observe a partial document.
func (f *File) write(ex *exhibition.Exhibition) error {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode exhibition: %w", err)
	}
	path := f.Path(ex.ID)

	tmp, err := os.CreateTemp(f.dir, "."+ex.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write exhibition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write exhibition: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	f.written[path] = sha256.Sum256(data)
	f.logger.Debug("Exhibition saved", zap.String("path", path))
	return nil
}

func (f *File) update(ctx context.Context, eventID string, fn func(*exhibition.Exhibition) error) error {
	if err := checkID(eventID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ex, err := f.read(ctx, eventID)
	if err != nil {
		return err
	}
	if err := fn(ex); err != nil {
		return err
	}
	return f.write(ex)
}

// IsOwnWrite reports whether the document at path still holds exactly the
// bytes this adapter last wrote there.
func (f *File) IsOwnWrite(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, ok := f.written[abs]
	return ok && sum == sha256.Sum256(data)
}

func (f *File) Close() error { return nil }
