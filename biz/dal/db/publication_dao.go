package db

import (
	"context"
	"errors"
	"time"

	"github.com/yi-nology/asset_bridge/biz/dal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublicationDAO persists the publication ledger.
type PublicationDAO struct{}

func NewPublicationDAO() *PublicationDAO { return &PublicationDAO{} }

// Upsert inserts p or refreshes the row with the same local path.
func (dao *PublicationDAO) Upsert(ctx context.Context, db *gorm.DB, p *model.Publication) error {
	if p == nil {
		return errors.New("publication must not be nil")
	}
	if p.LocalPath == "" {
		return errors.New("publication local path must not be empty")
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "local_path"}},
		DoUpdates: clause.AssignmentColumns([]string{"remote_url", "provider", "cache_key", "size", "published_at", "updated_at"}),
	}).Create(p).Error
}

func (dao *PublicationDAO) GetByLocalPath(ctx context.Context, db *gorm.DB, localPath string) (*model.Publication, error) {
	var p model.Publication
	if err := db.WithContext(ctx).Where("local_path = ?", localPath).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the most recent publications first. limit <= 0 means all.
func (dao *PublicationDAO) List(ctx context.Context, db *gorm.DB, provider string, limit int) ([]model.Publication, error) {
	var rows []model.Publication
	q := db.WithContext(ctx).Order("published_at DESC")
	if provider != "" {
		q = q.Where("provider = ?", provider)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByRemoteURL drops ledger rows after a remote delete.
func (dao *PublicationDAO) DeleteByRemoteURL(ctx context.Context, db *gorm.DB, remoteURL string) error {
	return db.WithContext(ctx).Where("remote_url = ?", remoteURL).Delete(&model.Publication{}).Error
}
