package commands

import (
	"context"

	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
)

func requireAdmin(ctx context.Context, members ports.MembershipReader, organizationID string, actorID string) error {
	membership, found, err := members.GetMembership(ctx, organizationID, actorID)
	if err != nil {
		return err
	}
	if !found || !membership.Active {
		return domainerrors.ErrNotOrganizationMember
	}
	if !membership.Role.CanAdminister() {
		return domainerrors.ErrNotOrganizationAdmin
	}
	return nil
}

func requireMember(ctx context.Context, members ports.MembershipReader, organizationID string, actorID string) error {
	membership, found, err := members.GetMembership(ctx, organizationID, actorID)
	if err != nil {
		return err
	}
	if !found || !membership.Active {
		return domainerrors.ErrNotOrganizationMember
	}
	return nil
}
