package commands

import (
	"context"
	"strings"

	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
)

func requireAdmin(ctx context.Context, members ports.MembershipReader, organizationID string, actorID string) error {
	membership, found, err := members.GetMembership(ctx, strings.TrimSpace(organizationID), strings.TrimSpace(actorID))
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
	membership, found, err := members.GetMembership(ctx, strings.TrimSpace(organizationID), strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if !found || !membership.Active {
		return domainerrors.ErrNotOrganizationMember
	}
	return nil
}
