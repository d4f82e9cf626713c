// Package dbstore implements store.KV on SQLite through gorm.
package dbstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yiblet/proboost/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SchemaVersion is written to the meta table on first open.
const SchemaVersion = "1"

// SQLiteStore is a SQLite-backed implementation of store.KV
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string

	// FirstOrCreate is a read followed by a write; keep upserts atomic.
	writeMu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps concurrent readers and writers from
	// tripping over SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&KVEntryModel{}, &MetaModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initMeta(); err != nil {
		return nil, fmt.Errorf("failed to init meta: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// initMeta records the schema version if not already present
func (s *SQLiteStore) initMeta() error {
	meta := &MetaModel{Name: "db_version", Value: SchemaVersion}
	return s.db.Where("name = ?", meta.Name).FirstOrCreate(meta).Error
}

// Version returns the schema version stored in the database.
func (s *SQLiteStore) Version() (string, error) {
	var meta MetaModel
	if err := s.db.First(&meta, "name = ?", "db_version").Error; err != nil {
		return "", fmt.Errorf("failed to read db_version: %w", err)
	}
	return meta.Value, nil
}

// Get retrieves a value by key
func (s *SQLiteStore) Get(key string) (string, error) {
	var model KVEntryModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get value: %w", err)
	}
	return model.Value, nil
}

// Set stores a value (upsert)
func (s *SQLiteStore) Set(key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	model := &KVEntryModel{
		Key:   key,
		Value: value,
	}

	// Upsert: update if exists, insert if not
	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": s.db.NowFunc()}).
		FirstOrCreate(model)

	if result.Error != nil {
		return fmt.Errorf("failed to set value: %w", result.Error)
	}

	return nil
}

// Delete removes a key
func (s *SQLiteStore) Delete(key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result := s.db.Delete(&KVEntryModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete value: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return nil
}

// List returns all key-value pairs
func (s *SQLiteStore) List() (map[string]string, error) {
	var models []KVEntryModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}

	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}

	return result, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
