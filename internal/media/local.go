package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LocalProvider stores media files in a directory served under /media/.
// Safe for concurrent use.
type LocalProvider struct {
	dir     string
	baseURL string
	mu      sync.RWMutex
}

// NewLocalProvider creates dir if needed. URLs are built as baseURL + "/media/" + name.
func NewLocalProvider(dir, baseURL string) (*LocalProvider, error) {
	if dir == "" {
		return nil, fmt.Errorf("media directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalProvider{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the storage directory.
func (p *LocalProvider) Dir() string { return p.dir }

// Name implements Provider.
func (p *LocalProvider) Name() string { return "local" }

// Put writes the object to disk.
func (p *LocalProvider) Put(_ context.Context, obj Object) (string, error) {
	path, err := p.Path(obj.Name)
	if err != nil {
		return "", err
	}
	if len(obj.Data) == 0 {
		return "", ErrEmpty
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.WriteFile(path, obj.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return p.baseURL + "/media/" + obj.Name, nil
}

// Open opens a stored file for reading. The caller closes it.
func (p *LocalProvider) Open(name string) (*os.File, error) {
	path, err := p.Path(name)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return os.Open(path)
}

// Delete removes a stored file. Missing files are not an error.
func (p *LocalProvider) Delete(name string) error {
	path, err := p.Path(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

// Path resolves name inside the media directory, rejecting anything that
// would escape it.
func (p *LocalProvider) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(p.dir, name), nil
}
