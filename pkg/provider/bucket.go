package provider

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/asset_bridge/pkg/config"
	"github.com/yi-nology/asset_bridge/pkg/storage"
)

const (
	defaultGoogleEndpoint = "https://storage.googleapis.com"
	defaultGoogleTTL      = 86400
)

// Bucket publishes by copying files into an object store.
type Bucket struct {
	Flags
	name  string
	store storage.Storage
}

// NewBucket wraps an already constructed store.
func NewBucket(name string, flags Flags, store storage.Storage) *Bucket {
	return &Bucket{Flags: flags, name: name, store: store}
}

// NewGoogleStorage targets a GCS bucket through its S3 interoperability
// API. Objects are served from url, which gets the bucket appended unless
// it already names it.
func NewGoogleStorage(flags Flags, cfg config.GoogleStorageConfig) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: google_storage bucket", ErrConfigMissing)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultGoogleTTL
	}
	store, err := storage.New(storage.Config{
		Type: "s3",
		S3: storage.S3Config{
			Endpoint:     endpoint,
			Region:       "auto",
			Bucket:       cfg.Bucket,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			PathStyle:    true,
			PublicURL:    GooglePublicURL(cfg),
			CacheControl: fmt.Sprintf("public, max-age=%d", ttl),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: google_storage: %v", ErrConfigMissing, err)
	}
	return NewBucket(NameGoogleStorage, flags, store), nil
}

// GooglePublicURL is the base URL GCS objects are served from.
func GooglePublicURL(cfg config.GoogleStorageConfig) string {
	base := strings.TrimSuffix(cfg.URL, "/")
	if base == "" {
		base = defaultGoogleEndpoint
	}
	bucket := cfg.CDNBucket
	if bucket == "" {
		bucket = cfg.Bucket
	}
	if !strings.Contains(strings.ToLower(base), strings.ToLower(bucket)) {
		base += "/" + bucket
	}
	return base
}

// NewS3 targets an S3-compatible bucket.
func NewS3(flags Flags, cfg config.S3Config) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket", ErrConfigMissing)
	}
	store, err := storage.New(storage.Config{
		Type: "s3",
		S3: storage.S3Config{
			Endpoint:     cfg.Endpoint,
			Region:       cfg.Region,
			Bucket:       cfg.Bucket,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			PathStyle:    cfg.PathStyle,
			PublicURL:    cfg.URL,
			CacheControl: cfg.CacheControl,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3: %v", ErrConfigMissing, err)
	}
	return NewBucket(NameS3, flags, store), nil
}

// NewLocal publishes into a directory served by another web server.
func NewLocal(flags Flags, cfg config.LocalConfig) (*Bucket, error) {
	if cfg.BasePath == "" || cfg.URL == "" {
		return nil, fmt.Errorf("%w: local base_path and url", ErrConfigMissing)
	}
	store, err := storage.New(storage.Config{
		Type:  "local",
		Local: storage.LocalConfig{BasePath: cfg.BasePath, URL: cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: local: %v", ErrConfigMissing, err)
	}
	return NewBucket(NameLocal, flags, store), nil
}

func (b *Bucket) Name() string { return b.name }

// Upload copies the file into the bucket.
func (b *Bucket) Upload(ctx context.Context, localPath, remote string) (string, error) {
	if b.Bypass() {
		return "", fmt.Errorf("%w: bypass mode", ErrUploadFailed)
	}
	abs, rel, err := b.locate(localPath)
	if err != nil {
		return "", err
	}
	key := remoteName(remote, rel)

	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	hlog.CtxDebugf(ctx, "[cdn][%s] upload %s as %s", b.name, abs, key)
	if err := b.store.PutObject(ctx, key, f, contentType(key), info.Size()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return b.publicURL(key), nil
}

// AssetURL points at the bucket, or at the application in bypass mode.
func (b *Bucket) AssetURL(p string) string {
	if b.Bypass() {
		return b.LocalURL(p)
	}
	return b.publicURL(strings.TrimPrefix(p, "/"))
}

func (b *Bucket) publicURL(key string) string {
	u, err := b.store.GenerateURL(context.Background(), key)
	if err != nil {
		hlog.Warnf("[cdn][%s] url for %s: %v", b.name, key, err)
		return b.LocalURL(key)
	}
	return u
}

func (b *Bucket) Delete(ctx context.Context, remote string) error {
	if err := b.store.DeleteObject(ctx, strings.TrimPrefix(remote, "/")); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (b *Bucket) Exists(ctx context.Context, remote string) (bool, error) {
	return b.store.ObjectExists(ctx, strings.TrimPrefix(remote, "/"))
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
