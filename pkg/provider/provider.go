// Package provider implements the origin clients derivatives and static
// files are published to.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yi-nology/asset_bridge/pkg/config"
)

var (
	ErrConfigMissing       = errors.New("cdn configuration missing")
	ErrUnsupportedProvider = errors.New("cdn provider not supported")
	ErrUploadFailed        = errors.New("origin upload failed")
	ErrDeleteFailed        = errors.New("origin delete failed")
	ErrNotSupported        = errors.New("operation not supported by provider")
)

// Provider names accepted in cdn.default.
const (
	NameWebravo       = "webravo"
	NameGoogleStorage = "google_storage"
	NameS3            = "s3"
	NameLocal         = "local"
)

// Provider is the origin client contract.
type Provider interface {
	Name() string
	// Upload publishes localPath, relative to the public directory or an
	// existing absolute path, under remote (defaults to the relative
	// path) and returns its public URL.
	Upload(ctx context.Context, localPath, remote string) (string, error)
	// AssetURL is the public URL of p, or its local URL in bypass mode.
	AssetURL(p string) string
	// LocalURL is the URL p is served from by the application itself.
	LocalURL(p string) string
	Delete(ctx context.Context, remote string) error
	Exists(ctx context.Context, remote string) (bool, error)
	Bypass() bool
	BypassAssets() bool
	Overwrite() bool
	CheckSize() bool
}

// New builds the provider named by cfg.Default. Configuration problems are
// reported as ErrConfigMissing or ErrUnsupportedProvider.
func New(cfg config.CDNConfig) (Provider, error) {
	flags := NewFlags(cfg)
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cfg.Default)), "-", "_")

	var (
		p   Provider
		err error
	)
	// p is only set on success; a nil *Bucket must not become a non-nil Provider.
	switch name {
	case "":
		return nil, fmt.Errorf("%w: default provider", ErrConfigMissing)
	case NameWebravo:
		var w *Webravo
		if w, err = NewWebravo(flags, cfg.Providers.Webravo); err == nil {
			p = w
		}
	case NameGoogleStorage, "googlestorage":
		var b *Bucket
		if b, err = NewGoogleStorage(flags, cfg.Providers.GoogleStorage); err == nil {
			p = b
		}
	case NameS3:
		var b *Bucket
		if b, err = NewS3(flags, cfg.Providers.S3); err == nil {
			p = b
		}
	case NameLocal:
		var b *Bucket
		if b, err = NewLocal(flags, cfg.Providers.Local); err == nil {
			p = b
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Default)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Flags carries the policy switches and local serving details shared by
// every provider.
type Flags struct {
	bypass       bool
	bypassAssets bool
	overwrite    bool
	checkSize    bool
	appURL       string
	publicDir    string
}

// NewFlags extracts the policy block from cfg.
func NewFlags(cfg config.CDNConfig) Flags {
	return Flags{
		bypass:       cfg.Bypass,
		bypassAssets: cfg.BypassAssets,
		overwrite:    cfg.OverwriteEnabled(),
		checkSize:    cfg.CheckSize,
		appURL:       strings.TrimSuffix(cfg.AppURL, "/"),
		publicDir:    cfg.PublicDir,
	}
}

func (f *Flags) Bypass() bool       { return f.bypass }
func (f *Flags) BypassAssets() bool { return f.bypassAssets }
func (f *Flags) Overwrite() bool    { return f.overwrite }
func (f *Flags) CheckSize() bool    { return f.checkSize }

// LocalURL joins p onto the application URL.
func (f *Flags) LocalURL(p string) string {
	return f.appURL + "/" + strings.TrimPrefix(p, "/")
}

// locate resolves localPath to an absolute file and the slash separated
// path relative to the public directory used as the default remote name.
func (f *Flags) locate(localPath string) (abs, rel string, err error) {
	candidate := filepath.Join(f.publicDir, filepath.FromSlash(strings.TrimPrefix(localPath, "/")))
	if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
		abs, err = filepath.Abs(candidate)
		if err != nil {
			return "", "", fmt.Errorf("resolve %s: %w", localPath, err)
		}
		return abs, strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(localPath)), "/"), nil
	}

	info, statErr := os.Stat(localPath)
	if statErr != nil || info.IsDir() {
		return "", "", fmt.Errorf("%w: invalid source path %s", ErrUploadFailed, localPath)
	}
	abs, err = filepath.Abs(localPath)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", localPath, err)
	}
	if pub, err := filepath.Abs(f.publicDir); err == nil {
		if r, err := filepath.Rel(pub, abs); err == nil && !strings.HasPrefix(r, "..") {
			return abs, filepath.ToSlash(r), nil
		}
	}
	slashed := filepath.ToSlash(abs)
	if i := strings.Index(slashed, "public/"); i >= 0 {
		return abs, slashed[i+len("public/"):], nil
	}
	return abs, strings.TrimPrefix(filepath.ToSlash(localPath), "/"), nil
}

func remoteName(remote, rel string) string {
	if strings.TrimSpace(remote) == "" {
		return rel
	}
	return strings.TrimPrefix(remote, "/")
}
