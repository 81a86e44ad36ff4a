package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Settlement SettlementConfig
	Server     ServerConfig
	Formance   FormanceConfig
	Listener   ListenerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite3 or pgx
	Path            string // file path for sqlite3, DSN for pgx
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// SettlementConfig holds the knobs of the settlement engine
type SettlementConfig struct {
	DefaultCommissionRate decimal.Decimal // percentage applied when a seller has none
	Timeout               time.Duration
	PlatformAccountId     string // empty means the oldest platform account
	DefaultPaymentMethod  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// FormanceConfig holds the optional Formance ledger mirror settings
type FormanceConfig struct {
	Enabled      bool
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
	Currency     string
}
