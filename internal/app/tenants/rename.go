package tenants

import (
	"context"
	"errors"
	"fmt"
	"time"

	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	partitionstore "github.com/dalemusser/tenanthub/internal/app/store/partitions"
	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/retry"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.uber.org/zap"
)

// RenameInput replaces the organization's name and its admin's
// credentials. AuthenticatedAs must belong to CurrentOrganizationName.
type RenameInput struct {
	CurrentOrganizationName string
	NewOrganizationName     string
	NewEmail                string
	NewPassword             string
	AuthenticatedAs         Principal
}

// Rename moves the partition, then updates the organization and admin
// records together. A failed catalog update moves the partition back.
func (m *Manager) Rename(ctx context.Context, in RenameInput) (_ Organization, err error) {
	start := m.now()
	defer func() { metrics.ObserveLifecycle("rename", err, time.Since(start)) }()

	current := in.CurrentOrganizationName
	if in.AuthenticatedAs.OrganizationName != current {
		return Organization{}, newError(ErrForbidden, msgForbiddenUpdate)
	}

	next, email, err := validateIdentity(in.NewOrganizationName, in.NewEmail, in.NewPassword)
	if err != nil {
		return Organization{}, err
	}

	org, err := retry.Do(ctx, m.retry, "get organization", func(ctx context.Context) (models.Organization, error) {
		return m.orgs.GetByName(ctx, current)
	})
	if errors.Is(err, organizationstore.ErrNotFound) {
		return Organization{}, newError(ErrNotFound, msgOrgNotFound)
	}
	if err != nil {
		return Organization{}, storeError("get organization", err)
	}

	moving := next != current
	if moving {
		taken, err := m.exists(ctx, "check organization", func(ctx context.Context) (bool, error) {
			return m.orgs.ExistsByName(ctx, next)
		})
		if err != nil {
			return Organization{}, err
		}
		if taken {
			return Organization{}, newError(ErrConflict, msgNewOrgExists)
		}
	}
	if email != in.AuthenticatedAs.Email {
		taken, err := m.exists(ctx, "check admin", func(ctx context.Context) (bool, error) {
			return m.admins.ExistsByEmail(ctx, email)
		})
		if err != nil {
			return Organization{}, err
		}
		if taken {
			return Organization{}, newError(ErrConflict, msgAdminExists)
		}
	}

	hash, err := m.hasher.Hash(in.NewPassword)
	if err != nil {
		return Organization{}, fmt.Errorf("hash password: %w", err)
	}

	moved := false
	if moving {
		moved, err = m.renamePartition(ctx, current, next)
		if err != nil {
			return Organization{}, err
		}
	}

	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.orgs.Rename(ctx, current, next, email); err != nil {
			return err
		}
		return m.admins.UpdateIdentity(ctx, in.AuthenticatedAs.Email, adminstore.Identity{
			Email:            email,
			OrganizationName: next,
			HashedPassword:   hash,
		})
	})
	if err != nil {
		m.undoRename(ctx, org, next, moved, err)
		switch {
		case errors.Is(err, organizationstore.ErrDuplicateOrganization):
			return Organization{}, newError(ErrConflict, msgNewOrgExists)
		case errors.Is(err, adminstore.ErrDuplicateEmail):
			return Organization{}, newError(ErrConflict, msgAdminExists)
		case errors.Is(err, organizationstore.ErrNotFound):
			return Organization{}, newError(ErrNotFound, msgOrgNotFound)
		case errors.Is(err, adminstore.ErrNotFound):
			// The principal's admin record vanished mid-request.
			return Organization{}, newError(ErrInvalidCredentials, msgBadToken)
		}
		return Organization{}, storeError("update catalog records", err)
	}

	m.log.Info("organization renamed",
		zap.String("organization", current),
		zap.String("new_organization", next),
		zap.String("admin_email", email))
	return Organization{
		Name:           next,
		CollectionName: models.PartitionName(next),
		AdminEmail:     email,
	}, nil
}

// renamePartition reports whether the partition was moved. A missing
// source partition is tolerated so that tenants whose partition was lost
// can still be renamed.
func (m *Manager) renamePartition(ctx context.Context, from, to string) (bool, error) {
	err := retry.Exec(ctx, m.retry, "rename partition", func(ctx context.Context) error {
		return m.parts.Rename(ctx, from, to)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, partitionstore.ErrExists):
		return false, newError(ErrConflict, msgNewOrgExists)
	case errors.Is(err, partitionstore.ErrNotFound):
		// A retried rename whose first attempt landed also ends here.
		landed, xerr := m.parts.Exists(ctx, to)
		if xerr == nil && landed {
			return true, nil
		}
		m.log.Warn("rename: source partition missing, continuing with catalog update",
			zap.String("organization", from),
			zap.String("partition", models.PartitionName(from)))
		return false, nil
	default:
		return false, storeError("rename partition", err)
	}
}

// undoRename restores the organization record (it may already carry the
// new name when no transaction was available) and moves the partition
// back.
func (m *Manager) undoRename(ctx context.Context, org models.Organization, next string, moved bool, cause error) {
	ctx, cancel := detached(ctx)
	defer cancel()

	m.log.Warn("rename: catalog update failed, undoing",
		zap.String("organization", org.Name),
		zap.String("new_organization", next),
		zap.Error(cause))

	err := m.orgs.Rename(ctx, next, org.Name, org.AdminEmail)
	if err != nil && !errors.Is(err, organizationstore.ErrNotFound) && !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		m.partial("rename", "undo_catalog", "organization record carries new name", err,
			zap.String("organization", org.Name),
			zap.String("new_organization", next))
	}

	if !moved {
		return
	}
	if err := m.parts.Rename(ctx, next, org.Name); err != nil {
		m.partial("rename", "undo_partition", "partition renamed but catalog uses old name", err,
			zap.String("organization", org.Name),
			zap.String("partition", models.PartitionName(next)))
	}
}
