package models

import "fmt"

// Role is a member's role within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// MembershipStatus is the lifecycle state of an organization membership.
type MembershipStatus string

const (
	MembershipPending MembershipStatus = "pending"
	MembershipActive  MembershipStatus = "active"
	MembershipRemoved MembershipStatus = "removed"
)

// ParseMembershipStatus converts a stored status string into a MembershipStatus.
func ParseMembershipStatus(s string) (MembershipStatus, error) {
	switch MembershipStatus(s) {
	case MembershipPending, MembershipActive, MembershipRemoved:
		return MembershipStatus(s), nil
	}
	return "", fmt.Errorf("unknown membership status: %q", s)
}

// RequestStatus is the state of a transfer request. Pending is the only
// non-terminal state.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// ParseRequestStatus converts a stored status string into a RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestApproved, RequestRejected, RequestCancelled:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status: %q", s)
}

// IsTerminal reports whether the status can never change again.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestPending
}

// OwnerType identifies which kind of entity owns a balance or occupies one
// side of a transaction.
type OwnerType string

const (
	OwnerUser         OwnerType = "user"
	OwnerOrganization OwnerType = "organization"
	OwnerPlatform     OwnerType = "platform"
)

// TransactionKind is the business reason a transaction was recorded.
type TransactionKind string

const (
	KindPeerTransfer  TransactionKind = "peer_transfer"
	KindOrgDeposit    TransactionKind = "org_deposit"
	KindOrgWithdrawal TransactionKind = "org_withdrawal"
	KindSignupGrant   TransactionKind = "signup_grant"
)
