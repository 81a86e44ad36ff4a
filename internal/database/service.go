/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// dialect captures the few statements that differ between backends.
type dialect struct {
	driver string
	// lockSuffix is appended to a SELECT that must hold the row until commit.
	// SQLite transactions are opened IMMEDIATE instead, so the suffix is empty.
	lockSuffix string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{driver: DriverSQLite}, nil
	case DriverPostgres:
		return dialect{driver: DriverPostgres, lockSuffix: " FOR UPDATE"}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type Service struct {
	db      *sqlx.DB
	dialect dialect
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Path
	if d.driver == DriverSQLite {
		// IMMEDIATE transactions take the write lock at BEGIN, which serializes
		// settlements of the same order on SQLite.
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
			cfg.Path, cfg.BusyTimeout.Milliseconds())
	}

	zap.L().Info("Opening database", zap.String("driver", d.driver))
	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if err := Migrate(db.DB, d.driver); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after migration failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return &Service{db: db, dialect: d}, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// HealthCheck verifies the database answers a trivial query.
func (s *Service) HealthCheck(ctx context.Context) error {
	var one int
	if err := s.db.GetContext(ctx, &one, queryHealthCheck); err != nil {
		return store.NewPersistenceError("health check", err)
	}
	return nil
}

// q rebinds a ?-style query for the active driver.
func (s *Service) q(query string) string {
	return s.db.Rebind(query)
}
