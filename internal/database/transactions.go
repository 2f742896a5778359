package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// insertTransactionParams contains the parameters for recording a
// transaction row inside an already-open unit of work.
type insertTransactionParams struct {
	TenantId     string
	Kind         models.TransactionKind
	SenderType   models.OwnerType
	SenderId     string
	ReceiverType models.OwnerType
	ReceiverId   string
	Amount       decimal.Decimal
	Description  string
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, params insertTransactionParams) (string, error) {
	transactionId := uuid.New().String()
	_, err := tx.ExecContext(ctx, queryInsertTransaction,
		transactionId, params.TenantId, params.Kind,
		params.SenderType, params.SenderId, params.ReceiverType, params.ReceiverId,
		params.Amount.String(), params.Description, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}
	return transactionId, nil
}

// Transfer atomically moves credits from one user to another and records the
// transaction. Either all of debit, credit and insert take effect, or none.
func (s *Service) Transfer(ctx context.Context, params store.TransferParams) (string, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: transfer amount must be positive, got %s", store.ErrInvalidArgument, params.Amount.String())
	}
	if params.SenderId == params.ReceiverId {
		return "", fmt.Errorf("%w: sender and receiver must be distinct", store.ErrInvalidArgument)
	}

	zap.L().Info("Processing peer transfer",
		zap.String("tenant_id", params.TenantId),
		zap.String("sender_id", params.SenderId),
		zap.String("receiver_id", params.ReceiverId),
		zap.String("amount", params.Amount.String()))

	var transactionId string
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		transactionId, err = insertTransactionTx(ctx, tx, insertTransactionParams{
			TenantId:     params.TenantId,
			Kind:         models.KindPeerTransfer,
			SenderType:   models.OwnerUser,
			SenderId:     params.SenderId,
			ReceiverType: models.OwnerUser,
			ReceiverId:   params.ReceiverId,
			Amount:       params.Amount,
			Description:  params.Description,
		})
		if err != nil {
			return err
		}
		if err := debitTx(ctx, tx, params.TenantId, models.OwnerUser, params.SenderId, params.Amount, transactionId); err != nil {
			return err
		}
		return creditTx(ctx, tx, params.TenantId, models.OwnerUser, params.ReceiverId, params.Amount, transactionId)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Peer transfer processed successfully",
		zap.String("transaction_id", transactionId),
		zap.String("sender_id", params.SenderId),
		zap.String("receiver_id", params.ReceiverId),
		zap.String("amount", params.Amount.String()))
	return transactionId, nil
}

func scanTransactionViews(rows *sql.Rows) ([]models.TransactionView, error) {
	var views []models.TransactionView
	for rows.Next() {
		var view models.TransactionView
		var amountStr string
		err := rows.Scan(&view.Id, &view.TenantId, &view.Kind,
			&view.SenderType, &view.SenderId, &view.ReceiverType, &view.ReceiverId,
			&amountStr, &view.Description, &view.HiddenBySender, &view.HiddenByReceiver,
			&view.CreatedAt, &view.SenderName, &view.ReceiverName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		view.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return views, nil
}

// GetHistory returns the owner's transactions newest first, excluding rows
// the owner has individually hidden, with counterpart display names joined.
func (s *Service) GetHistory(ctx context.Context, tenantId, ownerId string) ([]models.TransactionView, error) {
	rows, err := s.db.QueryContext(ctx, queryGetHistoryForOwner, tenantId, ownerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	return scanTransactionViews(rows)
}

// HideTransaction hides a transaction from whichever side ownerId occupies.
// The other party's view is unaffected; a stranger's call is a no-op.
func (s *Service) HideTransaction(ctx context.Context, tenantId, transactionId, ownerId string) error {
	var senderType, senderId, receiverType, receiverId string
	err := s.db.QueryRowContext(ctx, queryGetTransactionParties, tenantId, transactionId).
		Scan(&senderType, &senderId, &receiverType, &receiverId)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
	}
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	switch ownerId {
	case senderId:
		_, err = s.db.ExecContext(ctx, queryHideTransactionForSender, tenantId, transactionId)
	case receiverId:
		_, err = s.db.ExecContext(ctx, queryHideTransactionForReceiver, tenantId, transactionId)
	default:
		zap.L().Debug("Hide requested by a non-party, ignoring",
			zap.String("transaction_id", transactionId),
			zap.String("owner_id", ownerId))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to hide transaction: %w", err)
	}
	return nil
}

// CountForUser counts transactions still visible to the user.
func (s *Service) CountForUser(ctx context.Context, tenantId, userId string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountForUser, tenantId, userId).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// GetTotalEarned sums credits the user received, excluding rows the user hid.
func (s *Service) GetTotalEarned(ctx context.Context, tenantId, userId string) (decimal.Decimal, error) {
	total, err := s.sumAmounts(ctx, queryGetTotalEarned, tenantId, userId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total earnings: %w", err)
	}
	return total, nil
}
