// Package blob stores uploaded file bytes on local disk.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBadExtension = errors.New("file extension not allowed")
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidName  = errors.New("invalid file name")
)

// Object describes a stored blob.
type Object struct {
	Name string
	URL  string
	Size int64
}

// DiskStore writes blobs under Dir with random names and serves them back
// under URLPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	allowed   map[string]struct{}
}

func NewDiskStore(dir, urlPrefix string, maxBytes int64, allowedExt []string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(allowedExt))
	for _, ext := range allowedExt {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed[ext] = struct{}{}
		}
	}
	return &DiskStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
		allowed:   allowed,
	}, nil
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Allowed reports whether originalName has an allow-listed extension.
func (s *DiskStore) Allowed(originalName string) bool {
	_, ok := s.allowed[Extension(originalName)]
	return ok
}

// Save copies r to a new file named <uuid>.<ext>. A partially written file
// is removed on failure.
func (s *DiskStore) Save(ctx context.Context, r io.Reader, originalName string) (*Object, error) {
	if !s.Allowed(originalName) {
		return nil, ErrBadExtension
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := uuid.NewString() + "." + Extension(originalName)
	path := filepath.Join(s.dir, name)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	// Read one byte past the limit to detect oversized uploads.
	n, err := io.Copy(out, io.LimitReader(r, s.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write blob: %w", err)
	}

	return &Object{Name: name, URL: s.urlPrefix + "/" + name, Size: n}, nil
}

// Delete removes a stored blob. Missing blobs are not an error.
func (s *DiskStore) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open returns a reader for a stored blob.
func (s *DiskStore) Open(name string) (*os.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *DiskStore) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
