package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/asset_bridge/biz/service"
	"github.com/yi-nology/asset_bridge/pkg/manifest"
	"github.com/yi-nology/asset_bridge/pkg/transform"
	"github.com/yi-nology/asset_bridge/pkg/validator"
)

const defaultPublicationLimit = 50

// imageParams are the query parameters forwarded to the transform resolver.
var imageParams = []string{
	transform.ParamSize,
	transform.ParamMode,
	transform.ParamBackground,
	transform.ParamPosition,
	transform.ParamQuality,
	transform.ParamType,
	transform.ParamName,
	transform.ParamThreshold,
	transform.ParamCropMode,
}

// CDNHandler exposes the publishing pipeline over HTTP.
type CDNHandler struct {
	service *service.Service
}

func NewCDNHandler(svc *service.Service) *CDNHandler {
	return &CDNHandler{service: svc}
}

// Image derives and publishes an image and returns its reference.
func (h *CDNHandler) Image(ctx context.Context, c *app.RequestContext) {
	path, err := assetParam(c.Query("path"))
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	params := make(transform.Params, len(imageParams))
	for _, key := range imageParams {
		if v, ok := c.GetQuery(key); ok {
			params[key] = v
		}
	}
	if name := params[transform.ParamName]; name != "" {
		if err := validator.ValidateAssetPath(name); err != nil {
			WriteBadRequest(c, fmt.Errorf("name: %w", err))
			return
		}
	}
	RespondData(c, map[string]string{"url": h.service.DeriveAndPublish(ctx, path, params)})
}

// Upload publishes a file below the public directory.
func (h *CDNHandler) Upload(ctx context.Context, c *app.RequestContext) {
	path, err := assetParam(c.PostForm("path"))
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	remote := strings.TrimSpace(c.PostForm("remote_path"))
	if remote != "" {
		if err := validator.ValidateAssetPath(remote); err != nil {
			WriteBadRequest(c, fmt.Errorf("remote_path: %w", err))
			return
		}
	}
	ok := h.service.Upload(ctx, path, remote)
	RespondData(c, map[string]bool{"ok": ok})
}

// AssetURL resolves the public URL of an asset without publishing it.
func (h *CDNHandler) AssetURL(ctx context.Context, c *app.RequestContext) {
	name, err := assetParam(c.Query("name"))
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	RespondData(c, map[string]string{"url": h.service.ResolveAssetURL(name)})
}

// ManifestURL resolves a revisioned build asset.
func (h *CDNHandler) ManifestURL(ctx context.Context, c *app.RequestContext) {
	path, err := assetParam(c.Query("path"))
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	url, err := h.service.ManifestURL(path)
	if err != nil {
		if errors.Is(err, manifest.ErrNotDefined) {
			WriteNotFound(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}
	RespondData(c, map[string]string{"url": url})
}

// Publications lists the publication ledger.
func (h *CDNHandler) Publications(ctx context.Context, c *app.RequestContext) {
	limit := defaultPublicationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteBadRequest(c, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	rows, err := h.service.Publications(ctx, limit)
	if err != nil {
		WriteInternalError(c, err)
		return
	}
	RespondData(c, rows)
}

// Push uploads every selected static file.
func (h *CDNHandler) Push(ctx context.Context, c *app.RequestContext) {
	summary, err := h.service.Push(ctx)
	if err != nil {
		WriteInternalError(c, err)
		return
	}
	RespondData(c, summary)
}

// Transfer is the pull endpoint used when this instance acts as the CDN.
// It answers with a plain status code.
func (h *CDNHandler) Transfer(ctx context.Context, c *app.RequestContext) {
	status := h.service.Transfer(ctx, c.Query("url"), c.Query("remote_url"))
	c.String(consts.StatusOK, status)
}

func assetParam(raw string) (string, error) {
	p, ok := validator.SanitizeAssetPath(raw)
	if !ok {
		return "", validator.ValidateAssetPath(p)
	}
	return p, nil
}
