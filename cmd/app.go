package cmd

import (
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	goredis "github.com/redis/go-redis/v9"
	"github.com/yi-nology/asset_bridge/biz/dal/db"
	"github.com/yi-nology/asset_bridge/biz/service"
	"github.com/yi-nology/asset_bridge/pkg/config"
	"github.com/yi-nology/asset_bridge/pkg/database"
	"github.com/yi-nology/asset_bridge/pkg/lock"
	"github.com/yi-nology/asset_bridge/pkg/provider"
	"github.com/yi-nology/asset_bridge/pkg/redis"

	"gorm.io/gorm"
)

// app holds the dependencies shared by the commands.
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	redis   *goredis.Client
	locker  lock.Locker
	service *service.Service
}

// newApp builds the provider, ledger, lock and service from cfg. Provider
// configuration errors abort start-up.
func newApp(cfg *config.Config) (*app, error) {
	p, err := provider.New(cfg.CDN)
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	a := &app{cfg: cfg}
	if a.redis, err = redis.NewClient(cfg.Redis); err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	if a.locker, err = lock.New(cfg.CDN.Lock, a.redis); err != nil {
		a.Close()
		return nil, fmt.Errorf("init lock: %w", err)
	}

	if a.db, err = database.Open(cfg.Database); err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if a.db != nil {
		if err := db.AutoMigrate(a.db); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	if a.service, err = service.New(cfg.CDN, p, a.db, a.locker); err != nil {
		a.Close()
		return nil, err
	}
	hlog.Debugf("[cdn] provider=%s bypass=%v lock=%s", p.Name(), p.Bypass(), cfg.CDN.Lock)
	return a, nil
}

// Close releases the database and redis connections.
func (a *app) Close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
