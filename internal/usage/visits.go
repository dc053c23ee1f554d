package usage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// VisitStore persists the total number of dashboard visits.
type VisitStore interface {
	// Increment adds one visit and returns the new total.
	Increment(ctx context.Context) (int64, error)
	Get(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// FileVisitStore keeps the visit total as decimal text in a single file.
// A missing or unreadable file counts as zero. Read-modify-write cycles are
// serialised within the process; writes replace the file atomically.
type FileVisitStore struct {
	path string
	mu   sync.Mutex
}

func NewFileVisitStore(path string) *FileVisitStore {
	return &FileVisitStore{path: path}
}

// Init creates the file with a zero count when it does not exist.
func (s *FileVisitStore) Init() (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := s.write(0); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileVisitStore) Increment(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.read() + 1
	if err := s.write(n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *FileVisitStore) Get(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *FileVisitStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(0)
}

func (s *FileVisitStore) read() int64 {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *FileVisitStore) write(n int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".visits-*")
	if err != nil {
		return fmt.Errorf("write visits: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strconv.FormatInt(n, 10)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write visits: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write visits: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write visits: %w", err)
	}
	return nil
}
