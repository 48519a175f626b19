package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2beens/workoutlog/pkg"

	log "github.com/sirupsen/logrus"
)

// DiskStore keeps every key in its own file under root.
type DiskStore struct {
	root  string
	mutex sync.RWMutex
}

func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("disk store root path empty")
	}
	if err := pkg.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("ensure disk store root [%s]: %w", root, err)
	}

	return &DiskStore{
		root: root,
	}, nil
}

func (s *DiskStore) Read(_ context.Context, key string) (string, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return "", err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read [%s]: %w", path, err)
	}

	return string(content), nil
}

// Write replaces the file content atomically: the value goes to a temp
// file first, which is then renamed over the old one.
func (s *DiskStore) Write(_ context.Context, key, value string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(s.root, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op after a successful rename
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("disk store, remove temp file [%s]: %s", tmpPath, err)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into [%s]: %w", path, err)
	}

	return nil
}

func (s *DiskStore) keyPath(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key+".json"), nil
}
