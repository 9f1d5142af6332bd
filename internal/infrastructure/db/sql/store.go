// Package sql stores the snapshot blobs in a relational table through GORM.
// SQLite (pure Go driver) and MySQL are supported.
package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Supported dialects.
const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// Config captures the connection parameters of the snapshot table.
type Config struct {
	Dialect string
	DSN     string
}

// snapshotRow is one key of the durable store.
type snapshotRow struct {
	Name      string `gorm:"primaryKey;size:191"`
	Payload   string `gorm:"type:longtext;not null"`
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "orderdesk_snapshots" }

type Store struct {
	db *gorm.DB
}

// Open connects with the configured dialect and migrates the snapshot table.
func Open(cfg Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Dialect {
	case DialectSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DialectMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Dialect, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Dialect == DialectMySQL {
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(2)
	} else {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := gdb.AutoMigrate(&snapshotRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	return &Store{db: gdb}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var row snapshotRow
	res := s.db.WithContext(ctx).Where("name = ?", key).Limit(1).Find(&row)
	if res.Error != nil {
		return "", false, fmt.Errorf("select %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return row.Payload, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	row := snapshotRow{Name: key, Payload: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&snapshotRow{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
