package store

import (
	"context"
	"errors"

	"community-credits-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across the credit subsystem. Callers match with
// errors.Is; the wrapped reason strings are part of the contract.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrNotFound               = errors.New("not found")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidState           = errors.New("invalid state")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// TransferParams contains the parameters for a peer-to-peer transfer.
type TransferParams struct {
	TenantId    string
	SenderId    string
	ReceiverId  string
	Amount      decimal.Decimal
	Description string
}

// WalletTransferParams contains the parameters for a deposit into or a
// withdrawal out of an organization wallet.
type WalletTransferParams struct {
	TenantId       string
	UserId         string
	OrganizationId string
	Amount         decimal.Decimal
	Description    string
}

// CreateRequestParams contains the parameters for opening a transfer request
// against an organization wallet.
type CreateRequestParams struct {
	TenantId       string
	OrganizationId string
	RequesterId    string
	RecipientId    string
	Amount         decimal.Decimal
	Description    string
}

// MembershipGate answers role questions about an organization roster.
// Pending or removed memberships never satisfy any predicate.
type MembershipGate interface {
	IsOwner(ctx context.Context, tenantId, orgId, userId string) (bool, error)
	IsAdmin(ctx context.Context, tenantId, orgId, userId string) (bool, error)
	IsMember(ctx context.Context, tenantId, orgId, userId string) (bool, error)
}

// CreditLedger defines the contract of the credit subsystem.
type CreditLedger interface {
	MembershipGate

	// --- Balances ---
	GetBalance(ctx context.Context, tenantId string, ownerType models.OwnerType, ownerId string) (decimal.Decimal, error)
	ReconcileBalance(ctx context.Context, tenantId string, ownerType models.OwnerType, ownerId string) error

	// --- Peer transactions ---
	Transfer(ctx context.Context, params TransferParams) (string, error)
	GetHistory(ctx context.Context, tenantId, ownerId string) ([]models.TransactionView, error)
	HideTransaction(ctx context.Context, tenantId, transactionId, ownerId string) error
	CountForUser(ctx context.Context, tenantId, userId string) (int64, error)
	GetTotalEarned(ctx context.Context, tenantId, userId string) (decimal.Decimal, error)

	// --- Organization wallet ---
	GetOrCreateWallet(ctx context.Context, tenantId, orgId string) (*models.AccountBalance, error)
	GetWalletBalance(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error)
	DepositFromUser(ctx context.Context, params WalletTransferParams) (string, error)
	WithdrawToUser(ctx context.Context, params WalletTransferParams) (string, error)
	GetWalletHistory(ctx context.Context, tenantId, orgId string) ([]models.TransactionView, error)
	GetTotalReceived(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error)
	GetTotalPaidOut(ctx context.Context, tenantId, orgId string) (decimal.Decimal, error)

	// --- Transfer requests ---
	CreateRequest(ctx context.Context, params CreateRequestParams) (string, error)
	ApproveRequest(ctx context.Context, tenantId, requestId, approverId string) (string, error)
	RejectRequest(ctx context.Context, tenantId, requestId, approverId, reason string) error
	CancelRequest(ctx context.Context, tenantId, requestId, requesterId string) error
	GetRequest(ctx context.Context, tenantId, requestId string) (*models.TransferRequest, error)
	GetPendingRequests(ctx context.Context, tenantId, orgId string) ([]models.TransferRequestView, error)
	GetAllRequests(ctx context.Context, tenantId, orgId string) ([]models.TransferRequestView, error)
	GetRequestsByRequester(ctx context.Context, tenantId, userId string) ([]models.TransferRequestView, error)
	CountPendingRequests(ctx context.Context, tenantId, orgId string) (int64, error)

	// --- Lifecycle ---
	Close()
}
