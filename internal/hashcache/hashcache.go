// Package hashcache persists the content digest of every document as of its
// last confirmed sync. One plain-text file per document lives in the cache
// directory, named <document-name>.hash and holding a hex SHA-256 digest.
//
// A record reflects content last known to be identical locally and
// remotely. A missing record means the document was never synced.
package hashcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const suffix = ".hash"

// Store reads and writes hash records under a single directory
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the cache directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record file for the named document
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+suffix)
}

// Get returns the recorded hash for name. The boolean is false when no
// record exists or it cannot be read.
func (s *Store) Get(name string) (string, bool) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", false
	}
	hash := strings.TrimSpace(string(data))
	if hash == "" {
		return "", false
	}
	return hash, true
}

// Put records hash for name, replacing any previous record atomically.
func (s *Store) Put(name, hash string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := WriteFileAtomic(s.Path(name), []byte(hash), 0644); err != nil {
		return fmt.Errorf("failed to write hash record for %s: %w", name, err)
	}
	return nil
}

// Sum returns the hex SHA-256 digest of content
func Sum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// FileHash computes the SHA256 hash of a file
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// LocalHash is FileHash for callers that treat a missing or unreadable file
// as having no content. It returns "" in that case.
func LocalHash(path string) string {
	hash, err := FileHash(path)
	if err != nil {
		return ""
	}
	return hash
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".paihooks-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	// Keep the mode of an existing file
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
