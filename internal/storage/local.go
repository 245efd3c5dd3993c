package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalObjectStore keeps objects as files under a base directory. It is used
// for local development and in tests in place of S3.
type LocalObjectStore struct {
	baseDir string
}

var _ ObjectStore = (*LocalObjectStore)(nil)

func NewLocalObjectStore(dir string) (*LocalObjectStore, error) {
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}
	if err := os.MkdirAll(baseDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalObjectStore{baseDir: baseDir}, nil
}

func (s *LocalObjectStore) fullpath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *LocalObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.fullpath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalObjectStore) PutObject(ctx context.Context, key string, data io.Reader) error {
	path := s.fullpath(key)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file for %s: %w", key, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}

	return nil
}

func (s *LocalObjectStore) DeleteObject(ctx context.Context, key string) error {
	if err := os.Remove(s.fullpath(key)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *LocalObjectStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	sort.Strings(keys)
	return keys, nil
}
