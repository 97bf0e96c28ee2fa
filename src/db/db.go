package db

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxIdleConns    = 10
	maxOpenConns    = 50
	connMaxIdleTime = 5 * time.Minute
)

var (
	mu   sync.Mutex
	conn *gorm.DB
)

// Connect opens the ticket database once and hands out the same pool after.
// Unique violations surface as gorm.ErrDuplicatedKey.
func Connect(dsn string) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if conn != nil {
		return conn, nil
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to ticket database: %w", err)
	}
	if err := configurePool(gdb); err != nil {
		return nil, err
	}
	log.WithField("component", "db").Info("[DB] Ticket database connected")
	conn = gdb
	return gdb, nil
}

// Use replaces the shared pool, e.g. with a sqlmock-backed connection.
func Use(gdb *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	conn = gdb
}

func configurePool(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("error accessing ticket database pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	return nil
}
