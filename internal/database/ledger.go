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

// GetBalance returns the current balance for an owner. A missing row reads
// as zero.
func (s *Service) GetBalance(ctx context.Context, tenantId string, ownerType models.OwnerType, ownerId string) (decimal.Decimal, error) {
	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetBalance, tenantId, ownerType, ownerId).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		zap.L().Error("Failed to get balance",
			zap.String("tenant_id", tenantId),
			zap.String("owner_type", string(ownerType)),
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return balance, nil
}

// getBalanceTx reads the balance row inside a unit of work.
func getBalanceTx(ctx context.Context, tx *sql.Tx, tenantId string, ownerType models.OwnerType, ownerId string) (accountId string, balance decimal.Decimal, version int64, found bool, err error) {
	var balanceStr string
	err = tx.QueryRowContext(ctx, queryGetBalanceForUpdate, tenantId, ownerType, ownerId).Scan(&accountId, &balanceStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", decimal.Zero, 0, false, nil
	}
	if err != nil {
		return "", decimal.Zero, 0, false, fmt.Errorf("failed to get current balance: %w", err)
	}

	balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return "", decimal.Zero, 0, false, fmt.Errorf("failed to parse current balance %q: %w", balanceStr, err)
	}
	return accountId, balance, version, true, nil
}

// getOrCreateBalanceTx lazily materializes a zero balance row. Organizations
// get their wallet this way on first access.
func getOrCreateBalanceTx(ctx context.Context, tx *sql.Tx, tenantId string, ownerType models.OwnerType, ownerId string) (decimal.Decimal, int64, error) {
	_, balance, version, found, err := getBalanceTx(ctx, tx, tenantId, ownerType, ownerId)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if found {
		return balance, version, nil
	}

	accountId := uuid.New().String()
	if _, err := tx.ExecContext(ctx, queryInsertBalance, accountId, tenantId, ownerType, ownerId, "0"); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to create account balance: %w", err)
	}
	return decimal.Zero, 1, nil
}

// creditTx increases an owner's balance inside a unit of work. The row is
// created if it does not exist yet.
func creditTx(ctx context.Context, tx *sql.Tx, tenantId string, ownerType models.OwnerType, ownerId string, amount decimal.Decimal, lastTransactionId string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: credit amount must be positive, got %s", store.ErrInvalidArgument, amount.String())
	}

	balance, version, err := getOrCreateBalanceTx(ctx, tx, tenantId, ownerType, ownerId)
	if err != nil {
		return err
	}

	newBalance := balance.Add(amount)
	return updateBalanceTx(ctx, tx, tenantId, ownerType, ownerId, newBalance, version, lastTransactionId)
}

// debitTx decreases an owner's balance inside a unit of work. The balance is
// never allowed to go negative; on failure the row is untouched.
func debitTx(ctx context.Context, tx *sql.Tx, tenantId string, ownerType models.OwnerType, ownerId string, amount decimal.Decimal, lastTransactionId string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: debit amount must be positive, got %s", store.ErrInvalidArgument, amount.String())
	}

	_, balance, version, found, err := getBalanceTx(ctx, tx, tenantId, ownerType, ownerId)
	if err != nil {
		return err
	}
	if !found || balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s cannot cover %s", store.ErrInsufficientBalance, balance.String(), amount.String())
	}

	newBalance := balance.Sub(amount)
	return updateBalanceTx(ctx, tx, tenantId, ownerType, ownerId, newBalance, version, lastTransactionId)
}

// updateBalanceTx writes the new balance with an optimistic version check.
// The immediate transaction lock already serializes writers; a version miss
// here means something bypassed the unit of work.
func updateBalanceTx(ctx context.Context, tx *sql.Tx, tenantId string, ownerType models.OwnerType, ownerId string, newBalance decimal.Decimal, version int64, lastTransactionId string) error {
	result, err := tx.ExecContext(ctx, queryUpdateBalance, newBalance.String(), lastTransactionId, tenantId, ownerType, ownerId, version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

// sumAmounts totals the amount column of the given query exactly. Summing in
// SQL would coerce the decimal TEXT amounts to REAL.
func (s *Service) sumAmounts(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amount rows: %w", err)
	}
	return total, nil
}

// ReconcileBalance verifies that the hot balance row matches the net of all
// transactions involving the owner.
func (s *Service) ReconcileBalance(ctx context.Context, tenantId string, ownerType models.OwnerType, ownerId string) error {
	zap.L().Info("Reconciling balance",
		zap.String("tenant_id", tenantId),
		zap.String("owner_type", string(ownerType)),
		zap.String("owner_id", ownerId))

	currentBalance, err := s.GetBalance(ctx, tenantId, ownerType, ownerId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	received, err := s.sumAmounts(ctx, queryAmountsReceived, tenantId, ownerType, ownerId)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}
	sent, err := s.sumAmounts(ctx, queryAmountsSent, tenantId, ownerType, ownerId)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}
	calculatedBalance := received.Sub(sent)

	if !currentBalance.Equal(calculatedBalance) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("owner_id", ownerId),
			zap.String("current_balance", currentBalance.String()),
			zap.String("calculated_balance", calculatedBalance.String()),
			zap.String("difference", currentBalance.Sub(calculatedBalance).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", currentBalance.String(), calculatedBalance.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("owner_id", ownerId),
		zap.String("balance", currentBalance.String()))
	return nil
}
