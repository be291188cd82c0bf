// Package cache materialises image derivatives on disk, keyed by a hash of
// the transformed pixels, and decides when a derivative is stale.
package cache

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/asset_bridge/pkg/imageops"
	"github.com/yi-nology/asset_bridge/pkg/lock"
	"github.com/yi-nology/asset_bridge/pkg/source"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

// fallbackModTime is stamped on cache files derived from a fallback image
// so they never look fresh to a later request.
var fallbackModTime = time.Unix(0, 0)

// Result describes one GetOrCreate outcome.
type Result struct {
	Key   string
	Bytes []byte
	// CachePath is the absolute path of the cache artifact.
	CachePath string
	// Recomputed is set when the cache artifact was (re)written.
	Recomputed bool
	// Target is the file to publish, relative to the public directory and
	// slash separated: the cache artifact or the custom-named copy.
	Target string
	// Changed is set when Target was written by this call and has to be
	// published again.
	Changed bool
}

// Cache owns the derivative files below <publicDir>/<dir>.
type Cache struct {
	publicDir string
	dir       string
	checkSize bool
	locker    lock.Locker
}

// New creates a Cache. dir is relative to publicDir. A nil locker disables
// per-key locking.
func New(publicDir, dir string, checkSize bool, locker lock.Locker) *Cache {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &Cache{
		publicDir: publicDir,
		dir:       strings.Trim(filepath.ToSlash(dir), "/"),
		checkSize: checkSize,
		locker:    locker,
	}
}

// GetOrCreate derives src under t and returns the cache artifact, writing
// it only when no valid copy exists. Animated GIFs are copied verbatim.
func (c *Cache) GetOrCreate(ctx context.Context, src *source.File, t transform.Transform) (*Result, error) {
	var (
		data   []byte
		key    string
		format = t.Format
		img    *image.NRGBA
	)
	if src.Animated {
		raw, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("read animated source: %w", err)
		}
		format = "gif"
		data = raw
		key = KeyBytes(raw, format, t.Quality)
	} else {
		decoded, err := c.decode(src)
		if err != nil {
			return nil, err
		}
		img = imageops.Apply(decoded, t)
		key = Key(img, format, t.Quality)
	}

	release, err := c.locker.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lock cache key: %w", err)
	}
	defer release()

	rel := c.relPath(key, format)
	res := &Result{
		Key:       key,
		CachePath: c.abs(rel),
		Target:    rel,
	}

	var cached []byte
	fresh := !src.Fallback && c.isFresh(res.CachePath, src.ModTime)
	if fresh {
		if cached, err = os.ReadFile(res.CachePath); err != nil {
			hlog.CtxWarnf(ctx, "[cdn][cache] unreadable cache file %s: %v", res.CachePath, err)
			fresh = false
		}
	}

	if t.CustomName != "" && fresh && c.checkSize && !src.Animated && !src.Fallback {
		if sizeMismatch(res.CachePath, c.abs(cleanRel(t.CustomName))) {
			hlog.CtxInfof(ctx, "[cdn][cache] size mismatch for %s, recomputing", t.CustomName)
			fresh = false
		}
	}

	if fresh {
		data = cached
	} else {
		if img != nil {
			if data, err = imageops.Encode(img, format, t.Quality); err != nil {
				return nil, err
			}
		}
		if err := writeFile(res.CachePath, data); err != nil {
			return nil, fmt.Errorf("write cache file: %w", err)
		}
		if src.Fallback {
			if err := os.Chtimes(res.CachePath, fallbackModTime, fallbackModTime); err != nil {
				hlog.CtxWarnf(ctx, "[cdn][cache] backdate %s: %v", res.CachePath, err)
			}
		}
		res.Recomputed = true
		res.Changed = true
	}
	res.Bytes = data

	if t.CustomName != "" {
		target := cleanRel(t.CustomName)
		res.Target = target
		res.Changed = false
		if res.Recomputed || !exists(c.abs(target)) {
			if err := writeFile(c.abs(target), data); err != nil {
				return nil, fmt.Errorf("write custom file: %w", err)
			}
			res.Changed = true
		}
	}
	return res, nil
}

// Invalidate backdates the artifact behind res so the next GetOrCreate
// recomputes it and reports it as changed again.
func (c *Cache) Invalidate(res *Result) error {
	if err := os.Chtimes(res.CachePath, fallbackModTime, fallbackModTime); err != nil {
		return fmt.Errorf("backdate cache file: %w", err)
	}
	return nil
}

func (c *Cache) decode(src *source.File) (image.Image, error) {
	if src.Placeholder {
		return imageops.Placeholder(), nil
	}
	return imageops.Open(src.Path)
}

// relPath spreads cache files over two directory levels taken from the key.
func (c *Cache) relPath(key, format string) string {
	return path.Join(c.dir, key[:1], key[1:2], key+"."+format)
}

func (c *Cache) abs(rel string) string {
	return filepath.Join(c.publicDir, filepath.FromSlash(rel))
}

// isFresh reports whether a cache file exists and is not older than the
// source.
func (c *Cache) isFresh(cachePath string, sourceModTime time.Time) bool {
	info, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(sourceModTime)
}

func sizeMismatch(a, b string) bool {
	ia, errA := os.Stat(a)
	ib, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return ia.Size() != ib.Size()
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func cleanRel(name string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
}

// writeFile writes data next to p and renames it into place. A directory
// created concurrently by another writer is not an error.
func writeFile(p string, data []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
