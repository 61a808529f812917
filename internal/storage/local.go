package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// LocalStore writes uploads under root and exposes them below publicURL.
// Files are neither content-addressed nor deduplicated.
type LocalStore struct {
	root      string
	publicURL string
	newID     func() string
}

func NewLocalStore(root, publicURL string) (*LocalStore, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
		newID:     gen,
	}, nil
}

// StoredFile locates a saved upload.
type StoredFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Save copies r into folder under a generated name that keeps the original
// extension.
func (s *LocalStore) Save(folder, originalName string, r io.Reader) (*StoredFile, error) {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := s.newID() + ext
	diskPath := filepath.Join(dir, name)

	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(diskPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{
		Path: diskPath,
		URL:  s.publicURL + "/" + path.Join(folder, name),
	}, nil
}
