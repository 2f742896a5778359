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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetOrCreateWallet lazily materializes the organization's wallet and
// returns its current state.
func (s *Service) GetOrCreateWallet(ctx context.Context, tenantId, orgId string) (*models.AccountBalance, error) {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		_, _, err := getOrCreateBalanceTx(ctx, tx, tenantId, models.OwnerOrganization, orgId)
		return err
	})
	if err != nil {
		return nil, err
	}

	var wallet models.AccountBalance
	var balanceStr string
	err = s.db.QueryRowContext(ctx, queryGetBalanceForUpdate, tenantId, models.OwnerOrganization, orgId).
		Scan(&wallet.Id, &balanceStr, &wallet.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet.TenantId = tenantId
	wallet.OwnerType = models.OwnerOrganization
	wallet.OwnerId = orgId
	wallet.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet balance %q: %w", balanceStr, err)
	}
	return &wallet, nil
}

// GetWalletBalance returns the organization's current balance (zero when the
// wallet has never been touched).
func (s *Service) GetWalletBalance(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error) {
	return s.GetBalance(ctx, tenantId, models.OwnerOrganization, orgId)
}

// DepositFromUser atomically debits a user and credits the organization
// wallet, recording the transaction with the organization as receiver.
func (s *Service) DepositFromUser(ctx context.Context, params store.WalletTransferParams) (string, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: deposit amount must be positive, got %s", store.ErrInvalidArgument, params.Amount.String())
	}

	zap.L().Info("Processing wallet deposit",
		zap.String("tenant_id", params.TenantId),
		zap.String("user_id", params.UserId),
		zap.String("organization_id", params.OrganizationId),
		zap.String("amount", params.Amount.String()))

	var transactionId string
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		transactionId, err = insertTransactionTx(ctx, tx, insertTransactionParams{
			TenantId:     params.TenantId,
			Kind:         models.KindOrgDeposit,
			SenderType:   models.OwnerUser,
			SenderId:     params.UserId,
			ReceiverType: models.OwnerOrganization,
			ReceiverId:   params.OrganizationId,
			Amount:       params.Amount,
			Description:  params.Description,
		})
		if err != nil {
			return err
		}
		if err := debitTx(ctx, tx, params.TenantId, models.OwnerUser, params.UserId, params.Amount, transactionId); err != nil {
			return err
		}
		return creditTx(ctx, tx, params.TenantId, models.OwnerOrganization, params.OrganizationId, params.Amount, transactionId)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Wallet deposit processed successfully",
		zap.String("transaction_id", transactionId),
		zap.String("organization_id", params.OrganizationId),
		zap.String("amount", params.Amount.String()))
	return transactionId, nil
}

// WithdrawToUser is the mirror operation: debit the organization wallet,
// credit the user.
func (s *Service) WithdrawToUser(ctx context.Context, params store.WalletTransferParams) (string, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: withdrawal amount must be positive, got %s", store.ErrInvalidArgument, params.Amount.String())
	}

	zap.L().Info("Processing wallet withdrawal",
		zap.String("tenant_id", params.TenantId),
		zap.String("organization_id", params.OrganizationId),
		zap.String("user_id", params.UserId),
		zap.String("amount", params.Amount.String()))

	var transactionId string
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		transactionId, err = insertTransactionTx(ctx, tx, insertTransactionParams{
			TenantId:     params.TenantId,
			Kind:         models.KindOrgWithdrawal,
			SenderType:   models.OwnerOrganization,
			SenderId:     params.OrganizationId,
			ReceiverType: models.OwnerUser,
			ReceiverId:   params.UserId,
			Amount:       params.Amount,
			Description:  params.Description,
		})
		if err != nil {
			return err
		}
		if err := debitTx(ctx, tx, params.TenantId, models.OwnerOrganization, params.OrganizationId, params.Amount, transactionId); err != nil {
			return err
		}
		return creditTx(ctx, tx, params.TenantId, models.OwnerUser, params.UserId, params.Amount, transactionId)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Wallet withdrawal processed successfully",
		zap.String("transaction_id", transactionId),
		zap.String("organization_id", params.OrganizationId),
		zap.String("amount", params.Amount.String()))
	return transactionId, nil
}

// GetWalletHistory returns all transactions involving the organization,
// newest first, with display names joined.
func (s *Service) GetWalletHistory(ctx context.Context, tenantId, orgId string) ([]models.TransactionView, error) {
	rows, err := s.db.QueryContext(ctx, queryGetWalletHistory, tenantId, orgId)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	return scanTransactionViews(rows)
}

// GetTotalReceived sums credits deposited into the organization wallet.
// Derived from the transaction log, never stored redundantly.
func (s *Service) GetTotalReceived(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error) {
	total, err := s.sumAmounts(ctx, queryGetTotalReceived, tenantId, orgId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total received: %w", err)
	}
	return total, nil
}

// GetTotalPaidOut sums credits withdrawn from the organization wallet.
func (s *Service) GetTotalPaidOut(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error) {
	total, err := s.sumAmounts(ctx, queryGetTotalPaidOut, tenantId, orgId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total paid out: %w", err)
	}
	return total, nil
}
