package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Transfer status codes returned to the pulling CDN.
const (
	TransferOK         = "OK"
	TransferMissingURL = "KO-1"
	TransferBadPath    = "KO-2"
	TransferFailed     = "KO-3"
)

var errBadTargetPath = errors.New("target path missing")

// Transfer fetches rawURL and stores it below the public directory at the
// path of remoteURL (or of rawURL when remoteURL is empty). An existing file
// is renamed to <name>-old-<unix> instead of being overwritten.
func (s *Service) Transfer(ctx context.Context, rawURL, remoteURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return TransferMissingURL
	}
	target := remoteURL
	if strings.TrimSpace(target) == "" {
		target = rawURL
	}
	hlog.CtxDebugf(ctx, "[cdn][transfer] %s as %s", rawURL, target)

	data, err := s.fetch(ctx, rawURL)
	if err != nil {
		hlog.CtxErrorf(ctx, "[cdn][transfer] fetch %s: %v", rawURL, err)
		return TransferFailed
	}

	rel, err := targetPath(target)
	if err != nil {
		hlog.CtxWarnf(ctx, "[cdn][transfer] %s: %v", target, err)
		return TransferBadPath
	}
	if err := s.store(rel, data, time.Now()); err != nil {
		hlog.CtxErrorf(ctx, "[cdn][transfer] store %s: %v", rel, err)
		return TransferFailed
	}
	return TransferOK
}

// newFetchClient builds the transfer client. Responses larger than maxBody
// fail while being read.
func newFetchClient(maxBody int64) (*client.Client, error) {
	return client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(60*time.Second),
		client.WithMaxResponseBodySize(int(maxBody)),
	)
}

func (s *Service) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	status, body, err := s.client.Get(ctx, nil, rawURL)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	if err := s.limits.ValidateFileSize(int64(len(body))); err != nil {
		return nil, err
	}
	return body, nil
}

// store writes data to <public>/rel, keeping any previous file as a
// timestamped backup. The new content is written to a temp file first, so
// a failed write leaves the existing file in place.
func (s *Service) store(rel string, data []byte, now time.Time) error {
	full := filepath.Join(s.cfg.PublicDir, filepath.FromSlash(rel))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := writeTemp(dir, data)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if _, err := os.Stat(full); err == nil {
		backup := full + "-old-" + strconv.FormatInt(now.Unix(), 10)
		if err := os.Rename(full, backup); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("backup existing file: %w", err)
		}
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move file into place: %w", err)
	}
	return nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".transfer-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// targetPath extracts the path component of target and keeps it inside the
// public directory.
func targetPath(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadTargetPath, err)
	}
	rel := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if u.Path == "" || rel == "" {
		return "", errBadTargetPath
	}
	return rel, nil
}
