package api

import (
	"context"
	"fmt"

	"community-credits-go/internal/notify"
	"community-credits-go/internal/store"
)

func notifyReceived(tenantId, userId, from, amount string) notify.Notification {
	return notify.Notification{
		TenantId: tenantId,
		UserId:   userId,
		Kind:     "credits_received",
		Message:  fmt.Sprintf("You received %s credits from %s", amount, from),
	}
}

// CreateTransferRequest opens a pending request against an organization
// wallet.
func (s *CreditService) CreateTransferRequest(ctx context.Context, params store.CreateRequestParams) (string, error) {
	return s.db.CreateRequest(ctx, params)
}

// ApproveTransferRequest resolves a request, moves the funds, and notifies
// the requester once the movement has committed.
func (s *CreditService) ApproveTransferRequest(ctx context.Context, tenantId, requestId, approverId string) (string, error) {
	request, err := s.db.GetRequest(ctx, tenantId, requestId)
	if err != nil {
		return "", err
	}

	transactionId, err := s.db.ApproveRequest(ctx, tenantId, requestId, approverId)
	if err != nil {
		return "", err
	}

	orgName := s.orgName(ctx, tenantId, request.OrganizationId)
	s.audit.Record(ctx, tenantId,
		fmt.Sprintf("%s approved a transfer of %s credits from %s to %s",
			s.displayName(ctx, tenantId, approverId), request.Amount.String(), orgName,
			s.displayName(ctx, tenantId, request.RecipientId)))
	s.dispatcher.Dispatch(notify.Notification{
		TenantId: tenantId,
		UserId:   request.RequesterId,
		Kind:     "request_approved",
		Message:  fmt.Sprintf("Your transfer request for %s credits from %s was approved", request.Amount.String(), orgName),
	})
	s.dispatcher.Dispatch(notifyReceived(tenantId, request.RecipientId, orgName, request.Amount.String()))

	return transactionId, nil
}

// RejectTransferRequest resolves a request without moving funds and notifies
// the requester.
func (s *CreditService) RejectTransferRequest(ctx context.Context, tenantId, requestId, approverId, reason string) error {
	request, err := s.db.GetRequest(ctx, tenantId, requestId)
	if err != nil {
		return err
	}

	if err := s.db.RejectRequest(ctx, tenantId, requestId, approverId, reason); err != nil {
		return err
	}

	orgName := s.orgName(ctx, tenantId, request.OrganizationId)
	s.audit.Record(ctx, tenantId,
		fmt.Sprintf("%s rejected a transfer request for %s credits from %s: %s",
			s.displayName(ctx, tenantId, approverId), request.Amount.String(), orgName, reason))
	s.dispatcher.Dispatch(notify.Notification{
		TenantId: tenantId,
		UserId:   request.RequesterId,
		Kind:     "request_rejected",
		Message:  fmt.Sprintf("Your transfer request for %s credits from %s was rejected: %s", request.Amount.String(), orgName, reason),
	})
	return nil
}

// CancelTransferRequest withdraws a pending request on behalf of its
// requester.
func (s *CreditService) CancelTransferRequest(ctx context.Context, tenantId, requestId, requesterId string) error {
	return s.db.CancelRequest(ctx, tenantId, requestId, requesterId)
}
