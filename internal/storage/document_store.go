package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnsupportedType marks a file whose extension is outside the allow-list.
// Callers skip these files rather than failing the whole submission.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrUnsafeName marks a filename that sanitizes to nothing or does not match
// its sanitized form on retrieval.
var ErrUnsafeName = errors.New("unsafe file name")

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DocumentStore writes uploaded files under a single root directory, keyed
// by a name derived from the owning application id so identical filenames
// from different applications never collide.
type DocumentStore struct {
	root string
}

// NewDocumentStore creates the root directory if absent.
func NewDocumentStore(root string) (*DocumentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DocumentStore{root: root}, nil
}

// Allowed reports whether the filename carries an accepted extension.
// Matching is case-insensitive.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// Sanitize strips any path components and replaces characters outside
// [A-Za-z0-9._-] with underscores.
func Sanitize(filename string) string {
	base := filepath.Base(filepath.Clean(filename))
	base = strings.ReplaceAll(base, "\\", "_")
	sanitized := unsafeChars.ReplaceAllString(base, "_")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "." || sanitized == ".." {
		return ""
	}
	return sanitized
}

// StoredName composes the collision-safe key for an upload.
func StoredName(applicationID int64, sanitized string) string {
	return fmt.Sprintf("app_%d_%s", applicationID, sanitized)
}

// Store writes the upload to disk and returns the stored and sanitized
// original names. Files with a disallowed extension return
// ErrUnsupportedType without touching the disk.
func (s *DocumentStore) Store(applicationID int64, file *multipart.FileHeader) (storedName, originalName string, err error) {
	if file == nil || file.Filename == "" {
		return "", "", ErrUnsafeName
	}
	if !Allowed(file.Filename) {
		return "", "", ErrUnsupportedType
	}

	sanitized := Sanitize(file.Filename)
	if sanitized == "" || !Allowed(sanitized) {
		return "", "", ErrUnsafeName
	}

	stored := StoredName(applicationID, sanitized)

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, stored))
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", err
	}
	return stored, sanitized, nil
}

// Open streams a previously stored file. Names that do not survive
// sanitization unchanged are refused, so a crafted name cannot escape the
// root directory.
func (s *DocumentStore) Open(storedName string) (io.ReadCloser, error) {
	if storedName == "" || Sanitize(storedName) != storedName {
		return nil, ErrUnsafeName
	}
	return os.Open(filepath.Join(s.root, storedName))
}

// Remove deletes a stored file, used when a document row fails to persist
// after its bytes were written.
func (s *DocumentStore) Remove(storedName string) error {
	if storedName == "" || Sanitize(storedName) != storedName {
		return ErrUnsafeName
	}
	return os.Remove(filepath.Join(s.root, storedName))
}
