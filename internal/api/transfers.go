package api

import (
	"context"
	"fmt"

	"community-credits-go/internal/store"

	"go.uber.org/zap"
)

func (s *CreditService) displayName(ctx context.Context, tenantId, userId string) string {
	user, err := s.db.GetUserById(ctx, tenantId, userId)
	if err != nil {
		return userId
	}
	return user.Name
}

func (s *CreditService) orgName(ctx context.Context, tenantId, orgId string) string {
	org, err := s.db.GetOrganization(ctx, tenantId, orgId)
	if err != nil {
		return orgId
	}
	return org.Name
}

// Transfer moves credits between two users and fans out the post-commit
// side effects.
func (s *CreditService) Transfer(ctx context.Context, params store.TransferParams) (string, error) {
	transactionId, err := s.db.Transfer(ctx, params)
	if err != nil {
		return "", err
	}

	senderName := s.displayName(ctx, params.TenantId, params.SenderId)
	receiverName := s.displayName(ctx, params.TenantId, params.ReceiverId)
	s.audit.Record(ctx, params.TenantId,
		fmt.Sprintf("%s sent %s credits to %s (%s)", senderName, params.Amount.String(), receiverName, params.Description))
	s.dispatcher.Dispatch(notifyReceived(params.TenantId, params.ReceiverId, senderName, params.Amount.String()))

	return transactionId, nil
}

// DepositToOrganization moves credits from a user into an organization
// wallet.
func (s *CreditService) DepositToOrganization(ctx context.Context, params store.WalletTransferParams) (string, error) {
	transactionId, err := s.db.DepositFromUser(ctx, params)
	if err != nil {
		return "", err
	}

	userName := s.displayName(ctx, params.TenantId, params.UserId)
	orgName := s.orgName(ctx, params.TenantId, params.OrganizationId)
	s.audit.Record(ctx, params.TenantId,
		fmt.Sprintf("%s deposited %s credits into %s", userName, params.Amount.String(), orgName))

	return transactionId, nil
}

// WithdrawFromOrganization moves credits from an organization wallet to a
// user.
func (s *CreditService) WithdrawFromOrganization(ctx context.Context, params store.WalletTransferParams) (string, error) {
	transactionId, err := s.db.WithdrawToUser(ctx, params)
	if err != nil {
		return "", err
	}

	userName := s.displayName(ctx, params.TenantId, params.UserId)
	orgName := s.orgName(ctx, params.TenantId, params.OrganizationId)
	s.audit.Record(ctx, params.TenantId,
		fmt.Sprintf("%s paid out %s credits to %s", orgName, params.Amount.String(), userName))
	s.dispatcher.Dispatch(notifyReceived(params.TenantId, params.UserId, orgName, params.Amount.String()))

	zap.L().Debug("Wallet withdrawal side effects dispatched",
		zap.String("transaction_id", transactionId))
	return transactionId, nil
}
