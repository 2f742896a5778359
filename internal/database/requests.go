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
	"time"

	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateRequest opens a pending transfer request against an organization
// wallet. Only active members may request; no balance is touched.
func (s *Service) CreateRequest(ctx context.Context, params store.CreateRequestParams) (string, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: request amount must be positive, got %s", store.ErrInvalidArgument, params.Amount.String())
	}

	isMember, err := s.IsMember(ctx, params.TenantId, params.OrganizationId, params.RequesterId)
	if err != nil {
		return "", err
	}
	if !isMember {
		return "", fmt.Errorf("%w: only organization members can request transfers", store.ErrPermissionDenied)
	}

	requestId := uuid.New().String()
	_, err = s.db.ExecContext(ctx, queryInsertTransferRequest,
		requestId, params.TenantId, params.OrganizationId, params.RequesterId, params.RecipientId,
		params.Amount.String(), params.Description, models.RequestPending, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert transfer request: %w", err)
	}

	zap.L().Info("Transfer request created",
		zap.String("request_id", requestId),
		zap.String("organization_id", params.OrganizationId),
		zap.String("requester_id", params.RequesterId),
		zap.String("amount", params.Amount.String()))
	return requestId, nil
}

// GetRequest loads a single transfer request by id.
func (s *Service) GetRequest(ctx context.Context, tenantId, requestId string) (*models.TransferRequest, error) {
	var request models.TransferRequest
	var amountStr, statusStr string
	var reason, resolvedBy sql.NullString
	var resolvedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, queryGetTransferRequest, tenantId, requestId).Scan(
		&request.Id, &request.TenantId, &request.OrganizationId, &request.RequesterId, &request.RecipientId,
		&amountStr, &request.Description, &statusStr, &reason, &resolvedBy, &request.CreatedAt, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer request %s", store.ErrNotFound, requestId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer request: %w", err)
	}

	request.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request amount %q: %w", amountStr, err)
	}
	request.Status, err = models.ParseRequestStatus(statusStr)
	if err != nil {
		return nil, err
	}
	request.RejectionReason = reason.String
	request.ResolvedBy = resolvedBy.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		request.ResolvedAt = &t
	}
	return &request, nil
}

// ApproveRequest resolves a pending request by moving the funds. The funds
// movement and the status change commit in one unit of work; when the wallet
// cannot cover the amount the request stays pending so it can be retried
// once funded.
func (s *Service) ApproveRequest(ctx context.Context, tenantId, requestId, approverId string) (string, error) {
	request, err := s.GetRequest(ctx, tenantId, requestId)
	if err != nil {
		return "", err
	}
	if request.Status != models.RequestPending {
		return "", fmt.Errorf("%w: transfer request is no longer pending", store.ErrInvalidState)
	}

	isAdmin, err := s.IsAdmin(ctx, tenantId, request.OrganizationId, approverId)
	if err != nil {
		return "", err
	}
	if !isAdmin {
		return "", fmt.Errorf("%w: only owners and admins can approve transfer requests", store.ErrPermissionDenied)
	}
	if approverId == request.RequesterId {
		return "", fmt.Errorf("%w: cannot approve your own transfer request", store.ErrPermissionDenied)
	}

	var transactionId string
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		transactionId, err = insertTransactionTx(ctx, tx, insertTransactionParams{
			TenantId:     tenantId,
			Kind:         models.KindOrgWithdrawal,
			SenderType:   models.OwnerOrganization,
			SenderId:     request.OrganizationId,
			ReceiverType: models.OwnerUser,
			ReceiverId:   request.RecipientId,
			Amount:       request.Amount,
			Description:  request.Description,
		})
		if err != nil {
			return err
		}
		if err := debitTx(ctx, tx, tenantId, models.OwnerOrganization, request.OrganizationId, request.Amount, transactionId); err != nil {
			return err
		}
		if err := creditTx(ctx, tx, tenantId, models.OwnerUser, request.RecipientId, request.Amount, transactionId); err != nil {
			return err
		}
		return resolveRequestTx(ctx, tx, tenantId, requestId, models.RequestApproved, "", approverId)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Transfer request approved",
		zap.String("request_id", requestId),
		zap.String("approver_id", approverId),
		zap.String("transaction_id", transactionId))
	return transactionId, nil
}

// RejectRequest resolves a pending request without moving funds. Unlike
// approval, an admin may reject their own request.
func (s *Service) RejectRequest(ctx context.Context, tenantId, requestId, approverId, reason string) error {
	request, err := s.GetRequest(ctx, tenantId, requestId)
	if err != nil {
		return err
	}
	if request.Status != models.RequestPending {
		return fmt.Errorf("%w: transfer request is no longer pending", store.ErrInvalidState)
	}

	isAdmin, err := s.IsAdmin(ctx, tenantId, request.OrganizationId, approverId)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: only owners and admins can reject transfer requests", store.ErrPermissionDenied)
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		return resolveRequestTx(ctx, tx, tenantId, requestId, models.RequestRejected, reason, approverId)
	})
	if err != nil {
		return err
	}

	zap.L().Info("Transfer request rejected",
		zap.String("request_id", requestId),
		zap.String("approver_id", approverId),
		zap.String("reason", reason))
	return nil
}

// CancelRequest lets the original requester withdraw a pending request.
func (s *Service) CancelRequest(ctx context.Context, tenantId, requestId, requesterId string) error {
	request, err := s.GetRequest(ctx, tenantId, requestId)
	if err != nil {
		return err
	}
	if requesterId != request.RequesterId {
		return fmt.Errorf("%w: only the requester can cancel a transfer request", store.ErrPermissionDenied)
	}
	if request.Status != models.RequestPending {
		return fmt.Errorf("%w: transfer request is no longer pending", store.ErrInvalidState)
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		return resolveRequestTx(ctx, tx, tenantId, requestId, models.RequestCancelled, "", requesterId)
	})
	if err != nil {
		return err
	}

	zap.L().Info("Transfer request cancelled",
		zap.String("request_id", requestId),
		zap.String("requester_id", requesterId))
	return nil
}

// resolveRequestTx transitions a request out of pending. The update is
// guarded on the pending status; zero rows affected means another resolution
// won the race.
func resolveRequestTx(ctx context.Context, tx *sql.Tx, tenantId, requestId string, status models.RequestStatus, reason, resolvedBy string) error {
	result, err := tx.ExecContext(ctx, queryResolveTransferRequest,
		status, reason, resolvedBy, time.Now(), tenantId, requestId)
	if err != nil {
		return fmt.Errorf("failed to resolve transfer request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: transfer request is no longer pending", store.ErrInvalidState)
	}
	return nil
}

func (s *Service) queryRequestViews(ctx context.Context, query string, args ...any) ([]models.TransferRequestView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer requests: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var views []models.TransferRequestView
	for rows.Next() {
		var view models.TransferRequestView
		var amountStr, statusStr string
		var reason, resolvedBy sql.NullString
		var resolvedAt sql.NullTime

		err := rows.Scan(&view.Id, &view.TenantId, &view.OrganizationId, &view.RequesterId, &view.RecipientId,
			&amountStr, &view.Description, &statusStr, &reason, &resolvedBy, &view.CreatedAt, &resolvedAt,
			&view.RequesterName, &view.RecipientName, &view.OrganizationName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer request: %w", err)
		}

		view.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse request amount %q: %w", amountStr, err)
		}
		view.Status, err = models.ParseRequestStatus(statusStr)
		if err != nil {
			return nil, err
		}
		view.RejectionReason = reason.String
		view.ResolvedBy = resolvedBy.String
		if resolvedAt.Valid {
			t := resolvedAt.Time
			view.ResolvedAt = &t
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer request rows: %w", err)
	}
	return views, nil
}

// GetPendingRequests returns the organization's open requests, newest first.
func (s *Service) GetPendingRequests(ctx context.Context, tenantId, orgId string) ([]models.TransferRequestView, error) {
	return s.queryRequestViews(ctx, queryGetPendingRequestsForOrganization, tenantId, orgId)
}

// GetAllRequests returns every request ever made against the organization.
func (s *Service) GetAllRequests(ctx context.Context, tenantId, orgId string) ([]models.TransferRequestView, error) {
	return s.queryRequestViews(ctx, queryGetRequestsForOrganization, tenantId, orgId)
}

// GetRequestsByRequester returns the requests a user has opened, across
// organizations.
func (s *Service) GetRequestsByRequester(ctx context.Context, tenantId, userId string) ([]models.TransferRequestView, error) {
	return s.queryRequestViews(ctx, queryGetRequestsByRequester, tenantId, userId)
}

// CountPendingRequests counts the organization's open requests.
func (s *Service) CountPendingRequests(ctx context.Context, tenantId, orgId string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountPendingRequests, tenantId, orgId).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}
