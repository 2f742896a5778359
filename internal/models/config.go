package models

import "time"

type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedDemoData    bool
}

type LedgerConfig struct {
	GrantsFile string
}

type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
}
