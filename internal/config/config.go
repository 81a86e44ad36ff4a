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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"marketplace-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	settlementTimeout, err := getEnvDuration("SETTLEMENT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	commissionRate, err := getEnvDecimal("DEFAULT_COMMISSION_RATE", decimal.NewFromInt(10))
	if err != nil {
		return nil, err
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("DEFAULT_COMMISSION_RATE must be between 0 and 100, got %s", commissionRate.String())
	}

	readTimeout, err := getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("HTTP_WRITE_TIMEOUT", 45*time.Second)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	mirrorPollInterval, err := getEnvDuration("MIRROR_POLLING_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	mirrorCleanupInterval, err := getEnvDuration("MIRROR_CLEANUP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	mirrorRetention, err := getEnvDuration("MIRROR_RETENTION", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &models.Config{
		Database: models.DatabaseConfig{
			Driver:          getEnvString("DATABASE_DRIVER", "sqlite3"),
			Path:            getEnvString("DATABASE_PATH", "marketplace.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeout:     busyTimeout,
		},
		Settlement: models.SettlementConfig{
			DefaultCommissionRate: commissionRate,
			Timeout:               settlementTimeout,
			PlatformAccountId:     getEnvString("PLATFORM_ACCOUNT_ID", ""),
			DefaultPaymentMethod:  getEnvString("DEFAULT_PAYMENT_METHOD", "card"),
		},
		Server: models.ServerConfig{
			Addr:            getEnvString("HTTP_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			IdleTimeout:     idleTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Formance: models.FormanceConfig{
			Enabled:      getEnvBool("FORMANCE_ENABLED", false),
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER_NAME", "marketplace"),
			Currency:     getEnvString("FORMANCE_CURRENCY", "USD"),
		},
		Listener: models.ListenerConfig{
			PollingInterval: mirrorPollInterval,
			CleanupInterval: mirrorCleanupInterval,
			Retention:       mirrorRetention,
			BatchSize:       getEnvInt("MIRROR_BATCH_SIZE", 100),
		},
	}

	if cfg.Formance.Enabled && cfg.Formance.StackURL == "" {
		return nil, fmt.Errorf("FORMANCE_STACK_URL is required when FORMANCE_ENABLED=true")
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	if value := os.Getenv(key); value != "" {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, value, err)
		}
		return d, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
