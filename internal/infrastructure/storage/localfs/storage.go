package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Storage is a read-only view over a directory of uploaded e-mail files.
type Storage struct {
	basePath  string
	recursive bool
	maxBytes  int64
}

type Option func(*Storage)

// WithRecursive includes files in nested directories, keyed by their slash
// separated relative path.
func WithRecursive() Option {
	return func(s *Storage) {
		s.recursive = true
	}
}

// WithMaxFileSize makes Read fail for files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Storage) {
		s.maxBytes = n
	}
}

func New(basePath string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("open storage dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %s is not a directory", basePath)
	}
	s := &Storage{basePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Storage) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != s.basePath && !s.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list storage dir: %w", err)
	}
	return keys, nil
}

func (s *Storage) Read(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if s.maxBytes > 0 {
		reader = io.LimitReader(f, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", key, s.maxBytes)
	}
	return data, nil
}

func (s *Storage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("invalid storage key " + key)
	}
	return filepath.Join(s.basePath, clean), nil
}
