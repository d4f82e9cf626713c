package dbstore

import (
	"time"
)

// KVEntryModel represents a key-value pair in the database.
type KVEntryModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for KVEntryModel
func (KVEntryModel) TableName() string {
	return "kv_entries"
}

// MetaModel records schema bookkeeping for the database file.
type MetaModel struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value string `gorm:"not null"`
}

// TableName returns the table name for MetaModel
func (MetaModel) TableName() string {
	return "meta"
}
