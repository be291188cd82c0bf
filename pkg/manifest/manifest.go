// Package manifest resolves logical asset names through a revision
// manifest such as build/rev-manifest.json.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotDefined is returned for names missing from the manifest.
var ErrNotDefined = errors.New("file not defined in asset manifest")

// Manifest maps logical names ("css/app.css") to revisioned files
// ("css/app-d41d8cd98f.css"). The file is reloaded when it changes.
type Manifest struct {
	publicDir string
	rel       string

	mu      sync.Mutex
	modTime time.Time
	entries map[string]string
}

// New creates a Manifest for the file at rel below publicDir.
func New(publicDir, rel string) *Manifest {
	return &Manifest{
		publicDir: publicDir,
		rel:       strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/"),
	}
}

// Lookup returns the revisioned path of name relative to the public
// directory, e.g. "build/css/app-d41d8cd98f.css".
func (m *Manifest) Lookup(name string) (string, error) {
	entries, err := m.load()
	if err != nil {
		return "", err
	}
	key := strings.TrimPrefix(name, "/")
	rev, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotDefined, name)
	}
	return path.Join(path.Dir(m.rel), strings.TrimPrefix(rev, "/")), nil
}

func (m *Manifest) load() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	full := filepath.Join(m.publicDir, filepath.FromSlash(m.rel))
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	if m.entries != nil && info.ModTime().Equal(m.modTime) {
		return m.entries, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	m.entries = entries
	m.modTime = info.ModTime()
	return entries, nil
}
