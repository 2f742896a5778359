package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"community-credits-go/internal/models"

	"go.uber.org/zap"
)

// The membership roster is owned by the group subsystem; the ledger reads it
// as authorization input. Only active memberships grant anything.

func (s *Service) getMembership(ctx context.Context, tenantId, orgId, userId string) (models.Role, models.MembershipStatus, error) {
	var roleStr, statusStr string
	err := s.db.QueryRowContext(ctx, queryGetMembership, tenantId, orgId, userId).Scan(&roleStr, &statusStr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query membership: %w", err)
	}

	role, err := models.ParseRole(roleStr)
	if err != nil {
		return "", "", err
	}
	status, err := models.ParseMembershipStatus(statusStr)
	if err != nil {
		return "", "", err
	}
	return role, status, nil
}

// IsOwner reports whether the user is an active owner of the organization.
func (s *Service) IsOwner(ctx context.Context, tenantId, orgId, userId string) (bool, error) {
	role, status, err := s.getMembership(ctx, tenantId, orgId, userId)
	if err != nil {
		return false, err
	}
	return status == models.MembershipActive && role == models.RoleOwner, nil
}

// IsAdmin reports whether the user is an active owner or admin.
func (s *Service) IsAdmin(ctx context.Context, tenantId, orgId, userId string) (bool, error) {
	role, status, err := s.getMembership(ctx, tenantId, orgId, userId)
	if err != nil {
		return false, err
	}
	return status == models.MembershipActive && (role == models.RoleOwner || role == models.RoleAdmin), nil
}

// IsMember reports whether the user holds any active role.
func (s *Service) IsMember(ctx context.Context, tenantId, orgId, userId string) (bool, error) {
	_, status, err := s.getMembership(ctx, tenantId, orgId, userId)
	if err != nil {
		return false, err
	}
	return status == models.MembershipActive, nil
}

// UpsertMembership writes a roster row. The ledger itself never calls this;
// it exists for seed tooling and tests standing in for the group subsystem.
func (s *Service) UpsertMembership(ctx context.Context, tenantId, orgId, userId string, role models.Role, status models.MembershipStatus) error {
	_, err := s.db.ExecContext(ctx, queryUpsertMembership, orgId, userId, tenantId, role, status)
	if err != nil {
		zap.L().Error("Failed to upsert membership",
			zap.String("organization_id", orgId),
			zap.String("user_id", userId),
			zap.Error(err))
		return fmt.Errorf("unable to upsert membership: %w", err)
	}
	return nil
}
