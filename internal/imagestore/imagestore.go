// Package imagestore keeps uploaded letter images (headers, footers) on the
// local filesystem. The store is append-mostly: uploads get generated unique
// names and deletes are best-effort.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store struct {
	dir string
	log *zap.Logger
}

func New(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Save writes data under a generated unique filename and returns the stored
// reference (the bare filename).
func (s *Store) Save(originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), shortToken(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Resolve maps a stored reference to an absolute path. Absolute references
// pass through, which keeps pre-existing records working.
func (s *Store) Resolve(ref string) string {
	if ref == "" {
		return ""
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(s.dir, ref)
}

// Delete removes a stored image. A reference that is already gone is not an
// error.
func (s *Store) Delete(ref string) {
	if ref == "" {
		return
	}
	if err := os.Remove(s.Resolve(ref)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("image delete failed", zap.String("ref", ref), zap.Error(err))
	}
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
