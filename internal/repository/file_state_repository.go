package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/gofrs/flock"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStateRepository keeps each document as <dir>/<key>.json. Writes go
// through a temp file and rename; a lock file serializes processes sharing dir.
type FileStateRepository struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStateRepository(dir string) (*FileStateRepository, error) {
	if dir == "" {
		return nil, errors.New("state dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStateRepository{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".state.lock")),
	}, nil
}

func (r *FileStateRepository) Load(ctx context.Context, key string, dest any) (bool, error) {
	path, err := r.path(key)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lock.RLock(); err != nil {
		return false, fmt.Errorf("acquire state lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode document %s: %w", key, err)
	}
	return true, nil
}

func (r *FileStateRepository) Save(ctx context.Context, key string, value any) error {
	path, err := r.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (r *FileStateRepository) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	return filepath.Join(r.dir, key+".json"), nil
}
