package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	pkgio "github.com/matzehuels/nestboard/pkg/io"
)

// FileStore keeps one JSON snapshot file per workspace in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir, creating the
// directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Load(_ context.Context, name string) (pkgio.Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return pkgio.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return pkgio.Snapshot{}, notFound(name)
		}
		return pkgio.Snapshot{}, fmt.Errorf("read workspace file: %w", err)
	}
	snap, err := pkgio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return pkgio.Snapshot{}, fmt.Errorf("parse workspace %q: %w", name, err)
	}
	return snap, nil
}

// Save writes to a temporary file and renames it into place, so a crash
// never leaves a truncated snapshot behind.
func (s *FileStore) Save(_ context.Context, name string, snap pkgio.Snapshot) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := pkgio.WriteJSON(&buf, snap); err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	tmp, err := os.CreateTemp(s.baseDir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write workspace file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return fmt.Errorf("remove workspace file: %w", err)
	}
	return nil
}

func (s *FileStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the workspace files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
