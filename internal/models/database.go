package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a community member
type User struct {
	Id        string    `db:"id"`
	TenantId  string    `db:"tenant_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Organization represents a community group that owns a credit wallet
type Organization struct {
	Id        string    `db:"id"`
	TenantId  string    `db:"tenant_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Membership links a user to an organization with a role and status.
// The ledger subsystem only ever reads these rows.
type Membership struct {
	OrganizationId string           `db:"organization_id"`
	UserId         string           `db:"user_id"`
	TenantId       string           `db:"tenant_id"`
	Role           Role             `db:"role"`
	Status         MembershipStatus `db:"status"`
	CreatedAt      time.Time        `db:"created_at"`
}

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	Id                string          `db:"id"`
	TenantId          string          `db:"tenant_id"`
	OwnerType         OwnerType       `db:"owner_type"`
	OwnerId           string          `db:"owner_id"`
	Balance           decimal.Decimal `db:"balance"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Transaction represents an immutable record of a completed transfer
// (cold data). Rows are never updated after creation except for the two
// per-viewer visibility flags.
type Transaction struct {
	Id               string          `db:"id"`
	TenantId         string          `db:"tenant_id"`
	Kind             TransactionKind `db:"kind"`
	SenderType       OwnerType       `db:"sender_type"`
	SenderId         string          `db:"sender_id"`
	ReceiverType     OwnerType       `db:"receiver_type"`
	ReceiverId       string          `db:"receiver_id"`
	Amount           decimal.Decimal `db:"amount"`
	Description      string          `db:"description"`
	HiddenBySender   bool            `db:"hidden_by_sender"`
	HiddenByReceiver bool            `db:"hidden_by_receiver"`
	CreatedAt        time.Time       `db:"created_at"`
}

// TransactionView is a Transaction joined with counterpart display names
// for history rendering.
type TransactionView struct {
	Transaction
	SenderName   string `db:"sender_name"`
	ReceiverName string `db:"receiver_name"`
}

// TransferRequest is a proposal to move credits out of an organization
// wallet to a recipient user, pending approval by an owner or admin.
type TransferRequest struct {
	Id              string          `db:"id"`
	TenantId        string          `db:"tenant_id"`
	OrganizationId  string          `db:"organization_id"`
	RequesterId     string          `db:"requester_id"`
	RecipientId     string          `db:"recipient_id"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
	Status          RequestStatus   `db:"status"`
	RejectionReason string          `db:"rejection_reason"`
	ResolvedBy      string          `db:"resolved_by"`
	CreatedAt       time.Time       `db:"created_at"`
	ResolvedAt      *time.Time      `db:"resolved_at"`
}

// TransferRequestView is a TransferRequest joined with display names for
// presentation convenience.
type TransferRequestView struct {
	TransferRequest
	RequesterName    string `db:"requester_name"`
	RecipientName    string `db:"recipient_name"`
	OrganizationName string `db:"organization_name"`
}
