package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store writes uploaded documents to local disk, one directory per session.
// Files are named {doc_id}{ext} so a re-upload of the same document type for
// a session overwrites the previous file.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a store.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Save streams the document to disk and returns the stored path.
func (s *Store) Save(sessionID, docID, originalFilename string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create session dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	path := filepath.Join(dir, docID+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	return path, size, nil
}

// Read returns the stored bytes for a document.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// RemoveSession deletes every file stored for a session.
func (s *Store) RemoveSession(sessionID string) error {
	if err := os.RemoveAll(filepath.Join(s.root, sessionID)); err != nil {
		return fmt.Errorf("failed to remove session files: %w", err)
	}
	return nil
}
