package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/asset_bridge/pkg/config"
)

const webravoUserAgent = "Asset Bridge Agent 1.0"

// Webravo is a pull origin: uploading asks the CDN to fetch the file from
// the application URL.
type Webravo struct {
	Flags
	url       string
	uploadURL string
	client    *client.Client
}

// NewWebravo creates the pull origin client.
func NewWebravo(flags Flags, cfg config.WebravoConfig) (*Webravo, error) {
	if cfg.URL == "" || cfg.UploadURL == "" {
		return nil, fmt.Errorf("%w: webravo url and upload_url", ErrConfigMissing)
	}
	c, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Webravo{
		Flags:     flags,
		url:       strings.TrimSuffix(cfg.URL, "/"),
		uploadURL: strings.TrimSuffix(cfg.UploadURL, "/"),
		client:    c,
	}, nil
}

func (w *Webravo) Name() string { return NameWebravo }

// Upload triggers the pull. A single 301/302 is followed by hand; any other
// non-200 answer is a failure.
func (w *Webravo) Upload(ctx context.Context, localPath, remote string) (string, error) {
	if w.Bypass() {
		return "", fmt.Errorf("%w: bypass mode", ErrUploadFailed)
	}
	_, rel, err := w.locate(localPath)
	if err != nil {
		return "", err
	}

	target := w.uploadURL + "?url=" + url.QueryEscape(w.LocalURL(rel))
	if strings.TrimSpace(remote) != "" {
		target += "&remote_url=" + url.QueryEscape(remote)
	}
	hlog.CtxDebugf(ctx, "[cdn][webravo] upload %s", target)

	status, location, err := w.get(ctx, target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if (status == consts.StatusMovedPermanently || status == consts.StatusFound) && location != "" {
		next, err := resolveLocation(target, location)
		if err != nil {
			return "", fmt.Errorf("%w: bad redirect %q", ErrUploadFailed, location)
		}
		if status, _, err = w.get(ctx, next); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}
	if status != consts.StatusOK {
		return "", fmt.Errorf("%w: %s answered %d", ErrUploadFailed, w.uploadURL, status)
	}
	return w.url + "/" + remoteName(remote, rel), nil
}

func (w *Webravo) get(ctx context.Context, target string) (int, string, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.SetMethod(consts.MethodGet)
	req.Header.Set("User-Agent", webravoUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")

	if err := w.client.Do(ctx, req, resp); err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), string(resp.Header.Peek("Location")), nil
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}

// AssetURL points at the CDN, or at the application in bypass mode.
func (w *Webravo) AssetURL(p string) string {
	if w.Bypass() {
		return w.LocalURL(p)
	}
	return w.url + "/" + strings.TrimPrefix(p, "/")
}

func (w *Webravo) Delete(ctx context.Context, remote string) error {
	return fmt.Errorf("%w: webravo delete", ErrNotSupported)
}

func (w *Webravo) Exists(ctx context.Context, remote string) (bool, error) {
	return false, fmt.Errorf("%w: webravo exists", ErrNotSupported)
}
