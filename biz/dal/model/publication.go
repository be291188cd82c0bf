package model

import (
	"time"
)

// Publication records the last successful publish of a local file.
type Publication struct {
	ID          uint      `gorm:"primaryKey" json:"id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	LocalPath   string    `gorm:"column:local_path;type:varchar(512);uniqueIndex:idx_publication_path" json:"local_path"`
	RemoteURL   string    `gorm:"column:remote_url;type:text" json:"remote_url"`
	Provider    string    `gorm:"column:provider;type:varchar(64);index:idx_publication_provider" json:"provider"`
	CacheKey    string    `gorm:"column:cache_key;type:varchar(64)" json:"cache_key,omitempty"`
	Size        int64     `gorm:"column:size" json:"size"`
	PublishedAt time.Time `gorm:"column:published_at;index:idx_publication_time" json:"published_at"`
}

// TableName overrides gorm to use publication table.
func (Publication) TableName() string {
	return "publication"
}
