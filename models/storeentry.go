package models

import (
	"time"

	"gorm.io/gorm"
)

// StoreEntry is a simple key-value row for the small pieces of state the
// dashboard persists between sessions (current view, free-tier quota).
type StoreEntry struct {
	gorm.Model
	ID    uint   `gorm:"primaryKey"`
	Key   string `gorm:"uniqueIndex; size:64"`
	Value string
}

const (
	StoreKeyCurrentView = "current_view"
	StoreKeyFreeQuota   = "free_quota"
)

// QuotaState is the rolling-window usage record serialized into the
// free_quota store entry.
type QuotaState struct {
	Uses        int       `json:"uses"`
	WindowStart time.Time `json:"windowStart"`
}
