package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gobwas/glob"
	"github.com/yi-nology/asset_bridge/pkg/config"
)

// Summary counts the outcome of a bulk push.
type Summary struct {
	Uploaded int      `json:"uploaded"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Push uploads every file selected by the include and exclude rules. In
// bypass mode selected files are only counted as skipped.
func (s *Service) Push(ctx context.Context) (*Summary, error) {
	sel, err := newSelector(s.cfg.Include, s.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	files, err := sel.collect(s.cfg.Include.Directories)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if s.provider.Bypass() {
			sum.Skipped++
			continue
		}
		abs, err := filepath.Abs(filepath.FromSlash(f))
		if err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", f, err))
			continue
		}
		url, err := s.provider.Upload(ctx, abs, "")
		if err != nil {
			hlog.CtxErrorf(ctx, "[cdn][push] %s: %v", f, err)
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", f, err))
			continue
		}
		hlog.CtxDebugf(ctx, "[cdn][push] %s -> %s", f, url)
		s.record(ctx, f, url, "", fileSize(abs))
		sum.Uploaded++
	}
	hlog.CtxInfof(ctx, "[cdn][push] uploaded=%d skipped=%d failed=%d", sum.Uploaded, sum.Skipped, sum.Failed)
	return sum, nil
}

// selector applies the include and exclude rules to slash separated paths
// relative to the working directory.
type selector struct {
	includeExt      map[string]struct{}
	includePatterns []glob.Glob
	excludeDirs     []string
	excludeFiles    map[string]struct{}
	excludeExt      map[string]struct{}
	excludePatterns []glob.Glob
	skipHidden      bool
}

func newSelector(inc config.IncludeConfig, exc config.ExcludeConfig) (*selector, error) {
	s := &selector{
		includeExt:   extSet(inc.Extensions),
		excludeExt:   extSet(exc.Extensions),
		excludeFiles: make(map[string]struct{}, len(exc.Files)),
		skipHidden:   exc.HiddenExcluded(),
	}
	var err error
	if s.includePatterns, err = compilePatterns(inc.Patterns); err != nil {
		return nil, err
	}
	if s.excludePatterns, err = compilePatterns(exc.Patterns); err != nil {
		return nil, err
	}
	for _, d := range exc.Directories {
		if d = cleanSlash(d); d != "" {
			s.excludeDirs = append(s.excludeDirs, d)
		}
	}
	for _, f := range exc.Files {
		s.excludeFiles[cleanSlash(f)] = struct{}{}
	}
	return s, nil
}

func (s *selector) collect(dirs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		root := filepath.Clean(dir)
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == root && os.IsNotExist(err) {
					return fs.SkipDir
				}
				return err
			}
			rel := filepath.ToSlash(p)
			if d.IsDir() {
				if p != root && (s.hidden(d.Name()) || s.dirExcluded(rel)) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !s.match(rel) {
				return nil
			}
			if _, ok := seen[rel]; !ok {
				seen[rel] = struct{}{}
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	return files, nil
}

func (s *selector) match(rel string) bool {
	base := path.Base(rel)
	if s.hidden(base) || s.dirExcluded(path.Dir(rel)) {
		return false
	}
	if _, ok := s.excludeFiles[rel]; ok {
		return false
	}
	if _, ok := s.excludeFiles[base]; ok {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
	if _, ok := s.excludeExt[ext]; ok {
		return false
	}
	if matchAny(s.excludePatterns, rel, base) {
		return false
	}
	if len(s.includeExt) > 0 {
		if _, ok := s.includeExt[ext]; !ok {
			return false
		}
	}
	if len(s.includePatterns) > 0 && !matchAny(s.includePatterns, rel, base) {
		return false
	}
	return true
}

func (s *selector) hidden(name string) bool {
	return s.skipHidden && strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (s *selector) dirExcluded(dir string) bool {
	for _, d := range s.excludeDirs {
		if dir == d || strings.HasPrefix(dir, d+"/") {
			return true
		}
	}
	return false
}

func matchAny(patterns []glob.Glob, rel, base string) bool {
	for _, g := range patterns {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func extSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))] = struct{}{}
	}
	return set
}

func cleanSlash(p string) string {
	p = path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

func fileSize(p string) int64 {
	info, err := os.Stat(p)
	if err != nil {
		return 0
	}
	return info.Size()
}
