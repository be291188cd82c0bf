// Package source maps logical asset references to concrete files under the
// public directory.
package source

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when neither the reference nor any fallback can
// be resolved and overwrite mode is disabled.
var ErrNotFound = errors.New("source image not found")

// Extensions are probed in this order when the reference does not name an
// existing image file.
var Extensions = []string{"png", "jpg", "jpeg", "gif"}

// File is a resolved source image. It is rebuilt on every request.
type File struct {
	// Path is the absolute file path; empty for the built-in placeholder.
	Path string
	// Rel is Path relative to the public directory, slash separated.
	Rel      string
	ModTime  time.Time
	Size     int64
	Ext      string
	Animated bool
	// Fallback is set when the requested source was missing and the
	// fallback image (or placeholder) was substituted.
	Fallback bool
	// Placeholder is set when not even the fallback image exists.
	Placeholder bool
}

// Resolver locates source files.
type Resolver struct {
	publicDir string
	overwrite bool
	fallback  string
}

// NewResolver builds a Resolver rooted at publicDir. fallback is the
// configured fallback image, relative to publicDir.
func NewResolver(publicDir string, overwrite bool, fallback string) *Resolver {
	return &Resolver{
		publicDir: publicDir,
		overwrite: overwrite,
		fallback:  strings.TrimSpace(fallback),
	}
}

// Resolve finds the file for ref. When nothing matches and overwrite is
// enabled, the fallback image (or the placeholder) is returned with
// Fallback set; otherwise ErrNotFound.
func (r *Resolver) Resolve(ref string) (*File, error) {
	if f, err := r.probe(ref); err == nil {
		return f, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if !r.overwrite {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	if r.fallback != "" {
		f, err := r.probe(r.fallback)
		if err == nil {
			f.Fallback = true
			return f, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return &File{Ext: "png", Fallback: true, Placeholder: true}, nil
}

func (r *Resolver) probe(ref string) (*File, error) {
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(ref)), "/")
	ext := strings.TrimPrefix(path.Ext(rel), ".")
	if isImageExt(ext) {
		if f, err := r.stat(rel); err == nil || !errors.Is(err, ErrNotFound) {
			return f, err
		}
	}

	base := strings.TrimSuffix(rel, path.Ext(rel))
	for _, candidate := range Extensions {
		f, err := r.stat(base + "." + candidate)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (r *Resolver) stat(rel string) (*File, error) {
	full := filepath.Join(r.publicDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}

	f := &File{
		Path:    abs,
		Rel:     rel,
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Ext:     strings.ToLower(strings.TrimPrefix(path.Ext(rel), ".")),
	}
	if f.Ext == "gif" {
		animated, err := IsAnimatedGIF(abs)
		if err != nil {
			return nil, err
		}
		f.Animated = animated
	}
	return f, nil
}

func isImageExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
