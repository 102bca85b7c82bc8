package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// PoolSettings bounds the database/sql pool behind gorm. Zero fields fall
// back to DefaultPoolSettings.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolSettings suits one api replica sharing the database with a
// worker and a handful of electionctl invocations.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func (p PoolSettings) withDefaults() PoolSettings {
	defaults := DefaultPoolSettings()
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = defaults.MaxOpenConns
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = defaults.MaxIdleConns
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	return p
}

// Postgres wraps DB connectivity for the gorm-backed record store.
type Postgres struct {
	DB   *gorm.DB
	Pool PoolSettings
}

// Connect opens the election store database, sizes its pool and verifies the
// server answers before returning.
func Connect(dsn string, pool PoolSettings) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool = pool.withDefaults()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Election rows and outbox timestamps are compared across processes.
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db, Pool: pool}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
