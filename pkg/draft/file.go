package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/slicetopo/pkg/serialize"
)

// FileStore is a file-based draft store for CLI applications.
// Drafts are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based draft store.
// If baseDir is empty, defaults to ~/.config/slicetopo/drafts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "slicetopo", "drafts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) draftPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, doc serialize.Document) (Draft, error) {
	d, err := newDraft(name, doc)
	if err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return Draft{}, fmt.Errorf("marshal draft: %w", err)
	}

	// Write then rename so a crashed save never leaves half a draft.
	tmp := s.draftPath(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return Draft{}, fmt.Errorf("write draft file: %w", err)
	}
	if err := os.Rename(tmp, s.draftPath(name)); err != nil {
		os.Remove(tmp)
		return Draft{}, fmt.Errorf("write draft file: %w", err)
	}
	return d, nil
}

func (s *FileStore) Load(ctx context.Context, name string) (Draft, error) {
	if _, err := newDraft(name, serialize.Document{}); err != nil {
		return Draft{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(s.draftPath(name), name)
}

func (s *FileStore) read(path, name string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Draft{}, notFound(name)
		}
		return Draft{}, fmt.Errorf("read draft file: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("parse draft %s: %w", name, err)
	}
	return d, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if _, err := newDraft(name, serialize.Document{}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.draftPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete draft file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read draft dir: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		d, err := s.read(filepath.Join(s.baseDir, e.Name()), name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, d.info())
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error { return nil }

// Path returns the directory drafts are written to.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
