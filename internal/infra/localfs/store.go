// Package localfs stores raw uploads on the local disk, one directory per
// owner, matching the layout the worker's input paths point at.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Store struct {
	baseDir string
	baseURL string
}

func NewStore(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: baseURL}
}

func (s *Store) Save(ctx context.Context, r io.Reader, userID, filename string) (string, error) {
	dir := filepath.Join(s.baseDir, userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return filename, nil
}

func (s *Store) Path(userID, filename string) string {
	return filepath.Join(s.baseDir, userID, filename)
}

func (s *Store) Exists(userID, filename string) (bool, error) {
	_, err := os.Stat(s.Path(userID, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) Delete(userID, filename string) error {
	if err := os.Remove(s.Path(userID, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

func (s *Store) URL(userID, filename string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, userID, filename)
}
