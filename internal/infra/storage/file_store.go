package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/ports/repository"
)

var _ repository.KeyValue = (*FileStore)(nil)

// FileStore keeps each record in its own JSON file under a data directory.
// It is the single-host analog of the browser's durable storage and the
// default backend when no Redis is configured.
type FileStore struct {
	dir string
	// maxBytes caps the size of a single record; 0 means unlimited.
	// A rejected write surfaces as domain.ErrStorageFull, same as a
	// quota-exceeded browser store.
	maxBytes int64
}

func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if dir == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *FileStore) path(key string) string {
	// keys are fixed short names ("vouchers", "bundles"); sanitize anyway
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(key))
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if s.maxBytes > 0 && int64(len(value)) > s.maxBytes {
		return domain.ErrStorageFull
	}
	// write-then-rename keeps the record intact if the process dies mid-write
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
