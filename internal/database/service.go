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
	"database/sql"
	"fmt"

	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.CreditLedger.
var _ store.CreditLedger = (*Service)(nil)

type Service struct {
	db *sql.DB
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

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	// _txlock=immediate serializes ledger units of work at the storage
	// layer; concurrent debits against the same balance queue up instead of
	// racing the read-check-write sequence.
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on")
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
		if cerr := db.Close(); cerr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if cfg.SeedDemoData {
		if err := service.seedDemoTenant(ctx); err != nil {
			zap.L().Error("Failed to seed demo tenant", zap.Error(err))
		}
	} else {
		zap.L().Info("Skipping demo data creation (SEED_DEMO_DATA=false)")
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Users (owned by the platform's user lifecycle; the ledger needs the
	-- rows for referential integrity and display names)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, email)
	);

	CREATE INDEX IF NOT EXISTS idx_users_tenant_email ON users(tenant_id, email);
	CREATE INDEX IF NOT EXISTS idx_users_active ON users(active);

	-- Organizations
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_organizations_tenant ON organizations(tenant_id);

	-- Organization membership roster (read-only authorization input)
	CREATE TABLE IF NOT EXISTS organization_members (
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		tenant_id TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('owner', 'admin', 'member')),
		status TEXT NOT NULL CHECK (status IN ('pending', 'active', 'removed')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant_id, organization_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_members_tenant_user ON organization_members(tenant_id, user_id);

	-- Account Balances Table (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS account_balances (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		owner_type TEXT NOT NULL CHECK (owner_type IN ('user', 'organization', 'platform')),
		owner_id TEXT NOT NULL,
		balance TEXT NOT NULL DEFAULT '0',
		last_transaction_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, owner_type, owner_id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_account_balances_owner ON account_balances(tenant_id, owner_type, owner_id);

	-- Transactions Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		sender_type TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		receiver_type TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		hidden_by_sender BOOLEAN NOT NULL DEFAULT 0,
		hidden_by_receiver BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions(tenant_id, sender_type, sender_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_receiver ON transactions(tenant_id, receiver_type, receiver_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

	-- Transfer Requests
	CREATE TABLE IF NOT EXISTS transfer_requests (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		requester_id TEXT NOT NULL REFERENCES users(id),
		recipient_id TEXT NOT NULL REFERENCES users(id),
		amount TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'cancelled')),
		rejection_reason TEXT,
		resolved_by TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		resolved_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_requests_org_status ON transfer_requests(tenant_id, organization_id, status);
	CREATE INDEX IF NOT EXISTS idx_requests_requester ON transfer_requests(tenant_id, requester_id);

	-- Audit log (fire-and-forget, written after the financial commit)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		entry TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_tenant ON audit_log(tenant_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// seedDemoTenant creates a demo tenant with three users and one organization
// so the operator CLIs have something to work with.
func (s *Service) seedDemoTenant(ctx context.Context) error {
	const tenantId = "demo"

	users := []struct {
		name  string
		email string
	}{
		{"Alice Johnson", "alice.johnson@example.com"},
		{"Bob Smith", "bob.smith@example.com"},
		{"Carol Williams", "carol.williams@example.com"},
	}

	var userIds []string
	for _, user := range users {
		created, err := s.CreateUser(ctx, CreateUserParams{
			TenantId:      tenantId,
			UserId:        uuid.New().String(),
			Name:          user.name,
			Email:         user.email,
			StartingGrant: decimal.NewFromInt(100),
			GrantNote:     "welcome credits",
		})
		if err != nil {
			zap.L().Error("Failed to seed demo user", zap.String("name", user.name), zap.Error(err))
			continue
		}
		userIds = append(userIds, created.Id)
		zap.L().Info("Demo user created", zap.String("id", created.Id), zap.String("name", created.Name))
	}

	if len(userIds) == 0 {
		return fmt.Errorf("no demo users could be created")
	}

	org, err := s.CreateOrganization(ctx, tenantId, uuid.New().String(), "Neighborhood Garden", userIds[0])
	if err != nil {
		return fmt.Errorf("unable to seed demo organization: %w", err)
	}
	for _, userId := range userIds[1:] {
		if err := s.UpsertMembership(ctx, tenantId, org.Id, userId, models.RoleMember, models.MembershipActive); err != nil {
			zap.L().Error("Failed to seed demo membership", zap.String("user_id", userId), zap.Error(err))
		}
	}

	zap.L().Info("Demo tenant seeded", zap.String("tenant_id", tenantId), zap.String("organization_id", org.Id))
	return nil
}
