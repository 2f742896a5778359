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
	"errors"
	"fmt"

	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) GetUsers(ctx context.Context, tenantId string) ([]models.User, error) {
	zap.L().Debug("Querying active users", zap.String("tenant_id", tenantId))

	rows, err := s.db.QueryContext(ctx, queryGetActiveUsers, tenantId)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.Id, &user.TenantId, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, tenantId, userId string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserById, tenantId, userId).Scan(
		&user.Id, &user.TenantId, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
		}
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, tenantId, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserByEmail, tenantId, email).Scan(
		&user.Id, &user.TenantId, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, email)
		}
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}
	return &user, nil
}

// CreateUserParams contains the parameters for creating a user with their
// initial balance.
type CreateUserParams struct {
	TenantId      string
	UserId        string
	Name          string
	Email         string
	StartingGrant decimal.Decimal
	GrantNote     string
}

// CreateUser inserts the user and materializes their balance in one unit of
// work. A positive starting grant is recorded as a transaction from the
// platform so the grant shows up in history and reconciles.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	zap.L().Info("Creating user",
		zap.String("tenant_id", params.TenantId),
		zap.String("id", params.UserId),
		zap.String("name", params.Name),
		zap.String("email", params.Email))

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, queryInsertUser, params.UserId, params.TenantId, params.Name, params.Email)
		if err != nil {
			return fmt.Errorf("unable to insert user: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("unable to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: user with email %s already exists", store.ErrInvalidArgument, params.Email)
		}

		if params.StartingGrant.IsPositive() {
			transactionId, err := insertTransactionTx(ctx, tx, insertTransactionParams{
				TenantId:     params.TenantId,
				Kind:         models.KindSignupGrant,
				SenderType:   models.OwnerPlatform,
				SenderId:     "platform",
				ReceiverType: models.OwnerUser,
				ReceiverId:   params.UserId,
				Amount:       params.StartingGrant,
				Description:  params.GrantNote,
			})
			if err != nil {
				return err
			}
			return creditTx(ctx, tx, params.TenantId, models.OwnerUser, params.UserId, params.StartingGrant, transactionId)
		}

		accountId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertBalance, accountId, params.TenantId, models.OwnerUser, params.UserId, "0"); err != nil {
			return fmt.Errorf("failed to create account balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserByEmail(ctx, params.TenantId, params.Email)
}

// CreateOrganization inserts an organization with an active owner
// membership. Seeding convenience standing in for the group subsystem.
func (s *Service) CreateOrganization(ctx context.Context, tenantId, orgId, name, ownerUserId string) (*models.Organization, error) {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, queryInsertOrganization, orgId, tenantId, name); err != nil {
			return fmt.Errorf("unable to insert organization: %w", err)
		}
		if _, err := tx.ExecContext(ctx, queryUpsertMembership, orgId, ownerUserId, tenantId, models.RoleOwner, models.MembershipActive); err != nil {
			return fmt.Errorf("unable to insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrganization(ctx, tenantId, orgId)
}

func (s *Service) GetOrganization(ctx context.Context, tenantId, orgId string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRowContext(ctx, queryGetOrganization, tenantId, orgId).Scan(
		&org.Id, &org.TenantId, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: organization %s", store.ErrNotFound, orgId)
		}
		return nil, fmt.Errorf("unable to query organization: %w", err)
	}
	return &org, nil
}

func (s *Service) GetOrganizations(ctx context.Context, tenantId string) ([]models.Organization, error) {
	rows, err := s.db.QueryContext(ctx, queryGetOrganizations, tenantId)
	if err != nil {
		return nil, fmt.Errorf("unable to query organizations: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.Id, &org.TenantId, &org.Name, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan organization row: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization rows: %w", err)
	}
	return orgs, nil
}

// AppendAudit appends a human-readable audit entry. Called after the
// financial commit; failures are the caller's to swallow.
func (s *Service) AppendAudit(ctx context.Context, tenantId, entry string) error {
	_, err := s.db.ExecContext(ctx, queryInsertAuditEntry, uuid.New().String(), tenantId, entry)
	if err != nil {
		return fmt.Errorf("unable to append audit entry: %w", err)
	}
	return nil
}
