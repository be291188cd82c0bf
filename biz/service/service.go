package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/asset_bridge/biz/dal/db"
	"github.com/yi-nology/asset_bridge/biz/dal/model"
	"github.com/yi-nology/asset_bridge/pkg/cache"
	"github.com/yi-nology/asset_bridge/pkg/config"
	"github.com/yi-nology/asset_bridge/pkg/lock"
	"github.com/yi-nology/asset_bridge/pkg/manifest"
	"github.com/yi-nology/asset_bridge/pkg/provider"
	"github.com/yi-nology/asset_bridge/pkg/source"
	"github.com/yi-nology/asset_bridge/pkg/validator"

	"gorm.io/gorm"
)

// errorReference is returned by DeriveAndPublish when the pipeline fails
// and no fallback image is configured.
const errorReference = "error.jpg"

// Service exposes the publishing pipeline to the HTTP handlers and the CLI.
type Service struct {
	cfg      config.CDNConfig
	provider provider.Provider
	resolver *source.Resolver
	cache    *cache.Cache
	manifest *manifest.Manifest
	db       *gorm.DB
	ledger   *db.PublicationDAO
	client   *client.Client
	limits   *validator.TransferConfig
}

// New wires a Service around an already configured provider. database may
// be nil, in which case publications are not recorded. A nil locker
// disables per-key locking.
func New(cfg config.CDNConfig, p provider.Provider, database *gorm.DB, locker lock.Locker) (*Service, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: provider", provider.ErrConfigMissing)
	}
	limits := validator.DefaultTransferConfig()
	c, err := newFetchClient(limits.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Service{
		cfg:      cfg,
		provider: p,
		resolver: source.NewResolver(cfg.PublicDir, p.Overwrite(), cfg.FallbackImage),
		cache:    cache.New(cfg.PublicDir, cfg.CacheDir, p.CheckSize(), locker),
		manifest: manifest.New(cfg.PublicDir, cfg.Manifest),
		db:       database,
		ledger:   db.NewPublicationDAO(),
		client:   c,
		limits:   limits,
	}, nil
}

// Provider returns the origin client the service publishes to.
func (s *Service) Provider() provider.Provider {
	return s.provider
}

// Upload publishes a file below the public directory (or an absolute path)
// under remote. Failures are logged and reported as false.
func (s *Service) Upload(ctx context.Context, localPath, remote string) bool {
	if s.provider.Bypass() {
		hlog.CtxInfof(ctx, "[cdn][upload] bypass mode, %s not uploaded", localPath)
		return false
	}
	url, err := s.provider.Upload(ctx, localPath, remote)
	if err != nil {
		hlog.CtxErrorf(ctx, "[cdn][upload] %s: %v", localPath, err)
		return false
	}
	hlog.CtxInfof(ctx, "[cdn][upload] %s -> %s", localPath, url)
	s.record(ctx, localPath, url, "", 0)
	return true
}

// ResolveAssetURL returns the public URL of name without any network call.
func (s *Service) ResolveAssetURL(name string) string {
	return s.provider.AssetURL(name)
}

// RemoteImagePath is the public URL of an already published image.
func (s *Service) RemoteImagePath(name string) string {
	return s.ResolveAssetURL(name)
}

// Remove deletes remote from the origin.
func (s *Service) Remove(ctx context.Context, remote string) bool {
	if err := s.provider.Delete(ctx, remote); err != nil {
		hlog.CtxErrorf(ctx, "[cdn][delete] %s: %v", remote, err)
		return false
	}
	if s.db != nil {
		if err := s.ledger.DeleteByRemoteURL(ctx, s.db, s.provider.AssetURL(remote)); err != nil {
			hlog.CtxWarnf(ctx, "[cdn][ledger] forget %s: %v", remote, err)
		}
	}
	return true
}

// ManifestURL maps a logical asset to its revisioned build file. With
// bypass_assets the application serves it under /build.
func (s *Service) ManifestURL(name string) (string, error) {
	rev, err := s.manifest.Lookup(name)
	if err != nil {
		return "", err
	}
	if s.provider.BypassAssets() {
		return "/" + rev, nil
	}
	return s.provider.AssetURL(rev), nil
}

// Publications lists recorded publications, newest first.
func (s *Service) Publications(ctx context.Context, limit int) ([]model.Publication, error) {
	if s.db == nil {
		return nil, errors.New("publication ledger disabled")
	}
	return s.ledger.List(ctx, s.db, s.provider.Name(), limit)
}

// record upserts a ledger row. Ledger problems never fail a publish.
func (s *Service) record(ctx context.Context, localPath, remoteURL, key string, size int64) {
	if s.db == nil {
		return
	}
	p := &model.Publication{
		LocalPath:   localPath,
		RemoteURL:   remoteURL,
		Provider:    s.provider.Name(),
		CacheKey:    key,
		Size:        size,
		PublishedAt: time.Now(),
	}
	if err := s.ledger.Upsert(ctx, s.db, p); err != nil {
		hlog.CtxWarnf(ctx, "[cdn][ledger] record %s: %v", localPath, err)
	}
}
