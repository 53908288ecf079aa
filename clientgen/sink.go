package clientgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives generated files. Paths are slash-separated and relative.
type Sink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// DirSink writes generated files under a directory.
type DirSink struct {
	Root string

	// Mode is the file permission mode. Zero means 0644.
	Mode os.FileMode
}

// NewDirSink returns a sink writing under root.
func NewDirSink(root string) *DirSink {
	return &DirSink{Root: root, Mode: 0o644}
}

// WriteFile writes content atomically, creating parent directories.
func (s *DirSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := validatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(path))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".pdef-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	switch {
	case writeErr != nil:
		err = fmt.Errorf("failed to write temp file: %w", writeErr)
	case closeErr != nil:
		err = fmt.Errorf("failed to close temp file: %w", closeErr)
	default:
		err = os.Chmod(tmpPath, mode)
		if err == nil {
			err = os.Rename(tmpPath, full)
		}
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// MemorySink keeps generated files in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := validatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), content...)
	return nil
}

// Get returns the content written to path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Len returns the number of files written.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func validatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	return nil
}
