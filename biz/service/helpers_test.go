package service

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/yi-nology/asset_bridge/pkg/config"
	"github.com/yi-nology/asset_bridge/pkg/lock"
	"gorm.io/gorm"
)

const (
	spyCDN = "https://cdn.test"
	spyApp = "http://app.test"
)

// spyProvider records origin calls instead of performing them.
type spyProvider struct {
	mu           sync.Mutex
	bypass       bool
	bypassAssets bool
	overwrite    bool
	uploadErr    error
	deleteErr    error
	uploads      []string
	deletes      []string
}

func (p *spyProvider) Name() string { return "spy" }

func (p *spyProvider) Upload(_ context.Context, localPath, remote string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploads = append(p.uploads, localPath)
	if p.uploadErr != nil {
		return "", p.uploadErr
	}
	name := remote
	if name == "" {
		name = filepath.ToSlash(localPath)
	}
	return spyCDN + "/" + strings.TrimPrefix(name, "/"), nil
}

func (p *spyProvider) AssetURL(name string) string {
	if p.bypass {
		return p.LocalURL(name)
	}
	return spyCDN + "/" + strings.TrimPrefix(name, "/")
}

func (p *spyProvider) LocalURL(name string) string {
	return spyApp + "/" + strings.TrimPrefix(name, "/")
}

func (p *spyProvider) Delete(_ context.Context, remote string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes = append(p.deletes, remote)
	return p.deleteErr
}

func (p *spyProvider) Exists(context.Context, string) (bool, error) { return false, nil }
func (p *spyProvider) Bypass() bool                                 { return p.bypass }
func (p *spyProvider) BypassAssets() bool                           { return p.bypassAssets }
func (p *spyProvider) Overwrite() bool                              { return p.overwrite }
func (p *spyProvider) CheckSize() bool                              { return false }

func (p *spyProvider) uploadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.uploads)
}

func testCDNConfig(publicDir string) config.CDNConfig {
	return config.CDNConfig{
		PublicDir: publicDir,
		CacheDir:  "cache/images",
		Manifest:  "build/rev-manifest.json",
		Include:   config.IncludeConfig{Directories: []string{publicDir}},
	}
}

func newTestService(t *testing.T, cfg config.CDNConfig, p *spyProvider, database *gorm.DB) *Service {
	t.Helper()
	s, err := New(cfg, p, database, lock.NewKeyed())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func writeImage(t *testing.T, publicDir, rel string, w, h int) string {
	t.Helper()
	full := filepath.Join(publicDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := imaging.Save(imaging.New(w, h, color.NRGBA{R: 0xff, A: 0xff}), full); err != nil {
		t.Fatalf("save image: %v", err)
	}
	return full
}

func writeFile(t *testing.T, publicDir, rel, content string) string {
	t.Helper()
	full := filepath.Join(publicDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return full
}
