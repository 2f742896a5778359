package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/shopspring/decimal"
)

type requestFixture struct {
	service *Service
	org     *models.Organization
	owner   *models.User
	admin   *models.User
	member  *models.User
}

// setupRequestFixture builds an organization with an owner, an admin and a
// plain member, and funds the wallet with 500 credits from the owner.
func setupRequestFixture(t *testing.T) (*requestFixture, func()) {
	t.Helper()

	service, cleanup := setupTestDb(t)
	ctx := context.Background()

	owner := createTestUser(t, service, "t1", "Alice Johnson", "alice@example.com", 1000)
	admin := createTestUser(t, service, "t1", "Bob Smith", "bob@example.com", 0)
	member := createTestUser(t, service, "t1", "Carol Williams", "carol@example.com", 0)
	org := createTestOrg(t, service, "t1", "Garden Collective", owner.Id)

	if err := service.UpsertMembership(ctx, "t1", org.Id, admin.Id, models.RoleAdmin, models.MembershipActive); err != nil {
		t.Fatalf("Failed to add admin: %v", err)
	}
	if err := service.UpsertMembership(ctx, "t1", org.Id, member.Id, models.RoleMember, models.MembershipActive); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	_, err := service.DepositFromUser(ctx, store.WalletTransferParams{
		TenantId: "t1", UserId: owner.Id, OrganizationId: org.Id, Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("Failed to fund wallet: %v", err)
	}

	return &requestFixture{service: service, org: org, owner: owner, admin: admin, member: member}, cleanup
}

func (f *requestFixture) createRequest(t *testing.T, requesterId string, amount int64) string {
	t.Helper()

	requestId, err := f.service.CreateRequest(context.Background(), store.CreateRequestParams{
		TenantId:       "t1",
		OrganizationId: f.org.Id,
		RequesterId:    requesterId,
		RecipientId:    requesterId,
		Amount:         decimal.NewFromInt(amount),
		Description:    "tool budget",
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	return requestId
}

func TestCreateRequest_NonMemberDenied(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	outsider := createTestUser(t, fixture.service, "t1", "Eve Adams", "eve@example.com", 0)

	_, err := fixture.service.CreateRequest(ctx, store.CreateRequestParams{
		TenantId:       "t1",
		OrganizationId: fixture.org.Id,
		RequesterId:    outsider.Id,
		RecipientId:    outsider.Id,
		Amount:         decimal.NewFromInt(10),
	})
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got: %v", err)
	}
	if !strings.Contains(err.Error(), "only organization members can request transfers") {
		t.Errorf("Unexpected denial message: %v", err)
	}

	// Denied request must not be persisted
	all, err := fixture.service.GetAllRequests(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetAllRequests failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected no persisted requests, got %d", len(all))
	}
}

func TestCreateRequest_InactiveMembershipDenied(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	pending := createTestUser(t, fixture.service, "t1", "Dan Brown", "dan@example.com", 0)
	removed := createTestUser(t, fixture.service, "t1", "Eve Adams", "eve@example.com", 0)

	if err := fixture.service.UpsertMembership(ctx, "t1", fixture.org.Id, pending.Id, models.RoleMember, models.MembershipPending); err != nil {
		t.Fatalf("Failed to add pending member: %v", err)
	}
	if err := fixture.service.UpsertMembership(ctx, "t1", fixture.org.Id, removed.Id, models.RoleAdmin, models.MembershipRemoved); err != nil {
		t.Fatalf("Failed to add removed admin: %v", err)
	}

	for _, userId := range []string{pending.Id, removed.Id} {
		_, err := fixture.service.CreateRequest(ctx, store.CreateRequestParams{
			TenantId:       "t1",
			OrganizationId: fixture.org.Id,
			RequesterId:    userId,
			RecipientId:    userId,
			Amount:         decimal.NewFromInt(10),
		})
		if !errors.Is(err, store.ErrPermissionDenied) {
			t.Errorf("Expected ErrPermissionDenied for inactive membership, got: %v", err)
		}
	}
}

func TestCreateRequest_InvalidAmount(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	_, err := fixture.service.CreateRequest(context.Background(), store.CreateRequestParams{
		TenantId:       "t1",
		OrganizationId: fixture.org.Id,
		RequesterId:    fixture.member.Id,
		RecipientId:    fixture.member.Id,
		Amount:         decimal.Zero,
	})
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got: %v", err)
	}
}

func TestApproveRequest_MovesFunds(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.member.Id, 50)

	txId, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id)
	if err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}
	if txId == "" {
		t.Fatal("ApproveRequest returned empty transaction id")
	}

	walletBalance, err := fixture.service.GetWalletBalance(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !walletBalance.Equal(decimal.NewFromInt(450)) {
		t.Errorf("Expected wallet balance 450 after approval, got %s", walletBalance.String())
	}
	if balance := mustBalance(t, fixture.service, "t1", models.OwnerUser, fixture.member.Id); !balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected recipient balance 50 after approval, got %s", balance.String())
	}

	request, err := fixture.service.GetRequest(ctx, "t1", requestId)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if request.Status != models.RequestApproved {
		t.Errorf("Expected status approved, got %s", request.Status)
	}
	if request.ResolvedBy != fixture.owner.Id {
		t.Errorf("Expected resolver %s, got %s", fixture.owner.Id, request.ResolvedBy)
	}
	if request.ResolvedAt == nil {
		t.Error("Expected resolved_at to be set")
	}
}

func TestApproveRequest_SelfApprovalDenied(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.admin.Id, 50)

	_, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.admin.Id)
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got: %v", err)
	}
	if !strings.Contains(err.Error(), "cannot approve your own transfer request") {
		t.Errorf("Unexpected denial message: %v", err)
	}

	// A different admin can still approve it
	if _, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id); err != nil {
		t.Fatalf("Approval by a different admin failed: %v", err)
	}
}

func TestApproveRequest_MemberDenied(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	other := createTestUser(t, fixture.service, "t1", "Dan Brown", "dan@example.com", 0)
	if err := fixture.service.UpsertMembership(ctx, "t1", fixture.org.Id, other.Id, models.RoleMember, models.MembershipActive); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	requestId := fixture.createRequest(t, fixture.member.Id, 50)

	_, err := fixture.service.ApproveRequest(ctx, "t1", requestId, other.Id)
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got: %v", err)
	}
	if !strings.Contains(err.Error(), "only owners and admins can approve transfer requests") {
		t.Errorf("Unexpected denial message: %v", err)
	}
}

func TestApproveRequest_InsufficientWalletLeavesPending(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.member.Id, 1000)

	_, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id)
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got: %v", err)
	}

	walletBalance, err := fixture.service.GetWalletBalance(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !walletBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Wallet balance changed on failed approval: %s", walletBalance.String())
	}
	request, err := fixture.service.GetRequest(ctx, "t1", requestId)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if request.Status != models.RequestPending {
		t.Errorf("Expected request to stay pending, got %s", request.Status)
	}

	// A later approval succeeds once the wallet has been topped up
	_, err = fixture.service.DepositFromUser(ctx, store.WalletTransferParams{
		TenantId: "t1", UserId: fixture.owner.Id, OrganizationId: fixture.org.Id, Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("DepositFromUser failed: %v", err)
	}
	if _, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id); err != nil {
		t.Fatalf("Retry approval failed: %v", err)
	}
	walletBalance, err = fixture.service.GetWalletBalance(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !walletBalance.Equal(decimal.Zero) {
		t.Errorf("Expected wallet balance 0 after retried approval, got %s", walletBalance.String())
	}
}

func TestResolveRequest_Idempotency(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.member.Id, 50)

	if _, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id); err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}

	_, err := fixture.service.ApproveRequest(ctx, "t1", requestId, fixture.owner.Id)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on second approval, got: %v", err)
	}
	err = fixture.service.RejectRequest(ctx, "t1", requestId, fixture.owner.Id, "changed my mind")
	if !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on reject after approve, got: %v", err)
	}

	// The wallet was only debited once
	walletBalance, err := fixture.service.GetWalletBalance(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !walletBalance.Equal(decimal.NewFromInt(450)) {
		t.Errorf("Expected wallet balance 450, got %s", walletBalance.String())
	}
}

func TestRejectRequest(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.member.Id, 50)

	if err := fixture.service.RejectRequest(ctx, "t1", requestId, fixture.admin.Id, "outside this quarter's budget"); err != nil {
		t.Fatalf("RejectRequest failed: %v", err)
	}

	request, err := fixture.service.GetRequest(ctx, "t1", requestId)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if request.Status != models.RequestRejected {
		t.Errorf("Expected status rejected, got %s", request.Status)
	}
	if request.RejectionReason != "outside this quarter's budget" {
		t.Errorf("Expected rejection reason to be stored, got %q", request.RejectionReason)
	}

	// No funds moved
	walletBalance, err := fixture.service.GetWalletBalance(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !walletBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Wallet balance changed on rejection: %s", walletBalance.String())
	}
	if balance := mustBalance(t, fixture.service, "t1", models.OwnerUser, fixture.member.Id); !balance.Equal(decimal.Zero) {
		t.Errorf("Recipient balance changed on rejection: %s", balance.String())
	}
}

func TestRejectRequest_OwnRequestAllowed(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	requestId := fixture.createRequest(t, fixture.admin.Id, 50)

	if err := fixture.service.RejectRequest(context.Background(), "t1", requestId, fixture.admin.Id, "no longer needed"); err != nil {
		t.Fatalf("Admins should be able to reject their own requests, got: %v", err)
	}
}

func TestCancelRequest(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	requestId := fixture.createRequest(t, fixture.member.Id, 50)

	err := fixture.service.CancelRequest(ctx, "t1", requestId, fixture.owner.Id)
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for non-requester, got: %v", err)
	}
	if !strings.Contains(err.Error(), "only the requester can cancel a transfer request") {
		t.Errorf("Unexpected denial message: %v", err)
	}

	if err := fixture.service.CancelRequest(ctx, "t1", requestId, fixture.member.Id); err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}
	request, err := fixture.service.GetRequest(ctx, "t1", requestId)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if request.Status != models.RequestCancelled {
		t.Errorf("Expected status cancelled, got %s", request.Status)
	}

	err = fixture.service.CancelRequest(ctx, "t1", requestId, fixture.member.Id)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for resolved request, got: %v", err)
	}
}

func TestRequestQueries(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	ctx := context.Background()
	first := fixture.createRequest(t, fixture.member.Id, 10)
	second := fixture.createRequest(t, fixture.admin.Id, 20)

	if _, err := fixture.service.ApproveRequest(ctx, "t1", second, fixture.owner.Id); err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}

	pending, err := fixture.service.GetPendingRequests(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetPendingRequests failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Id != first {
		t.Errorf("Expected only request %s to be pending, got %d rows", first, len(pending))
	}
	if pending[0].RequesterName != "Carol Williams" {
		t.Errorf("Expected requester name Carol Williams, got %q", pending[0].RequesterName)
	}
	if pending[0].OrganizationName != "Garden Collective" {
		t.Errorf("Expected organization name Garden Collective, got %q", pending[0].OrganizationName)
	}

	all, err := fixture.service.GetAllRequests(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("GetAllRequests failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 requests in total, got %d", len(all))
	}

	mine, err := fixture.service.GetRequestsByRequester(ctx, "t1", fixture.member.Id)
	if err != nil {
		t.Fatalf("GetRequestsByRequester failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Id != first {
		t.Errorf("Expected requester view to contain only %s", first)
	}

	count, err := fixture.service.CountPendingRequests(ctx, "t1", fixture.org.Id)
	if err != nil {
		t.Fatalf("CountPendingRequests failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 pending request, got %d", count)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	fixture, cleanup := setupRequestFixture(t)
	defer cleanup()

	_, err := fixture.service.GetRequest(context.Background(), "t1", "missing-request")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got: %v", err)
	}
	_, err = fixture.service.ApproveRequest(context.Background(), "t1", "missing-request", fixture.owner.Id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound from approval, got: %v", err)
	}
}
