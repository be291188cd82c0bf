package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures service level configuration loaded from config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Redis    RedisConfig    `yaml:"redis"`
	CDN      CDNConfig      `yaml:"cdn"`
}

// RedisConfig defines Redis connection settings for the cache key lock.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CORSConfig defines CORS middleware settings.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin"`
	AllowMethods     string `yaml:"allow_methods"`
	AllowHeaders     string `yaml:"allow_headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DatabaseConfig defines the database backend of the publication ledger.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MySQLConfig contains MySQL specific connection details.
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// PostgresConfig contains PostgreSQL specific connection details.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Lock modes for CDNConfig.Lock.
const (
	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

// CDNConfig drives derivation and publication.
type CDNConfig struct {
	Bypass       bool `yaml:"bypass"`
	BypassAssets bool `yaml:"bypass_assets"`
	// Overwrite is a pointer so an explicit false survives applyDefaults.
	Overwrite     *bool           `yaml:"overwrite"`
	CheckSize     bool            `yaml:"checksize"`
	Default       string          `yaml:"default"`
	FallbackImage string          `yaml:"fallback_image"`
	PublicDir     string          `yaml:"public_dir"`
	CacheDir      string          `yaml:"cache_dir"`
	AppURL        string          `yaml:"app_url"`
	Manifest      string          `yaml:"manifest"`
	Lock          string          `yaml:"lock"`
	Include       IncludeConfig   `yaml:"include"`
	Exclude       ExcludeConfig   `yaml:"exclude"`
	Providers     ProvidersConfig `yaml:"providers"`
}

// OverwriteEnabled reports the effective overwrite flag (default true).
func (c CDNConfig) OverwriteEnabled() bool {
	return c.Overwrite == nil || *c.Overwrite
}

// IncludeConfig selects files for a bulk push.
type IncludeConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Patterns    []string `yaml:"patterns"`
}

// ExcludeConfig removes files from a bulk push.
type ExcludeConfig struct {
	Directories []string `yaml:"directories"`
	Files       []string `yaml:"files"`
	Extensions  []string `yaml:"extensions"`
	Patterns    []string `yaml:"patterns"`
	Hidden      *bool    `yaml:"hidden"`
}

// HiddenExcluded reports whether dot files are skipped (default true).
func (c ExcludeConfig) HiddenExcluded() bool {
	return c.Hidden == nil || *c.Hidden
}

// ProvidersConfig holds the settings of every supported origin.
type ProvidersConfig struct {
	Webravo       WebravoConfig       `yaml:"webravo"`
	GoogleStorage GoogleStorageConfig `yaml:"google_storage"`
	S3            S3Config            `yaml:"s3"`
	Local         LocalConfig         `yaml:"local"`
}

// WebravoConfig configures the pull-trigger origin.
type WebravoConfig struct {
	URL       string `yaml:"url"`
	UploadURL string `yaml:"upload_url"`
}

// GoogleStorageConfig configures a GCS bucket reached through its S3
// compatible XML API.
type GoogleStorageConfig struct {
	Bucket    string `yaml:"bucket"`
	CDNBucket string `yaml:"cdn_bucket"`
	URL       string `yaml:"url"`
	TTL       int    `yaml:"ttl"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// S3Config configures an S3-compatible bucket (AWS S3, MinIO, OSS).
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	PathStyle    bool   `yaml:"path_style"`
	URL          string `yaml:"url"`
	CacheControl string `yaml:"cache_control"`
}

// LocalConfig publishes into a directory served by some other web server.
type LocalConfig struct {
	BasePath string `yaml:"base_path"`
	URL      string `yaml:"url"`
}

// Load reads a YAML configuration file from the provided path.
// It searches in the current working directory first, then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
		return cfg, nil
	}

	log.Printf("Loading config from: %s", configPath)
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var parsed Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&parsed)
	return &parsed, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		CORS: CORSConfig{
			AllowOrigin:      "*",
			AllowMethods:     "GET,POST,OPTIONS",
			AllowHeaders:     "*",
			AllowCredentials: false,
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/publications.db"
	}

	cdn := &cfg.CDN
	cdn.Default = strings.ToLower(strings.TrimSpace(cdn.Default))
	if cdn.PublicDir == "" {
		cdn.PublicDir = "public"
	}
	if cdn.CacheDir == "" {
		cdn.CacheDir = "cache/images"
	}
	if cdn.Manifest == "" {
		cdn.Manifest = "build/rev-manifest.json"
	}
	if cdn.Lock == "" {
		cdn.Lock = LockNone
	}
	cdn.AppURL = strings.TrimSuffix(cdn.AppURL, "/")
	if len(cdn.Include.Directories) == 0 {
		cdn.Include.Directories = []string{cdn.PublicDir}
	}
	if cdn.Providers.GoogleStorage.URL == "" {
		cdn.Providers.GoogleStorage.URL = "https://storage.googleapis.com"
	}
	if cdn.Providers.GoogleStorage.CDNBucket == "" {
		cdn.Providers.GoogleStorage.CDNBucket = cdn.Providers.GoogleStorage.Bucket
	}
	if cdn.Providers.S3.Region == "" {
		cdn.Providers.S3.Region = "us-east-1"
	}
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	// 1. Current working directory
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	// 2. Next to the binary executable
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		candidate := filepath.Join(exeDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
