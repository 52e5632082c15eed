package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vectora-ai/vectora/pkg/analysis"
	"gopkg.in/yaml.v3"
)

// FileStore keeps settings in a YAML file. Writes go to a temporary file that
// is renamed over the target, so readers never observe a partial record.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the file at path. The file and its
// parent directory are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Load reads the settings file. A missing file yields Defaults().
func (f *FileStore) Load(_ context.Context) (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.read()
	if err != nil {
		return Settings{}, err
	}

	return FromRecord(rec), nil
}

// Save validates s and replaces the whole record.
func (f *FileStore) Save(_ context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.write(s.ToRecord())
}

// SaveLastCheck rewrites the record with res as the cached result, keeping
// every other key.
func (f *FileStore) SaveLastCheck(_ context.Context, res analysis.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.read()
	if err != nil {
		return err
	}

	if rec.Values == nil {
		rec.Values = map[string]string{}
	}
	rec.LastCheck = &res

	return f.write(rec)
}

func (f *FileStore) read() (Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("settings: load: %w", err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("settings: parse %s: %w", f.path, err)
	}

	return rec, nil
}

func (f *FileStore) write(rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("settings: chmod: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("settings: write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("settings: replace: %w", err)
	}

	return nil
}
