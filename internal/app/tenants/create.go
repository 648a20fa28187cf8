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
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateInput struct {
	OrganizationName string
	Email            string
	Password         string
}

// Create provisions a new tenant: partition first, then the organization
// and its admin in one catalog transaction. If the catalog write fails the
// partition is dropped again.
func (m *Manager) Create(ctx context.Context, in CreateInput) (_ Organization, err error) {
	start := m.now()
	defer func() { metrics.ObserveLifecycle("create", err, time.Since(start)) }()

	name, email, err := validateIdentity(in.OrganizationName, in.Email, in.Password)
	if err != nil {
		return Organization{}, err
	}

	taken, err := m.exists(ctx, "check organization", func(ctx context.Context) (bool, error) {
		return m.orgs.ExistsByName(ctx, name)
	})
	if err != nil {
		return Organization{}, err
	}
	if taken {
		return Organization{}, newError(ErrConflict, msgOrgExists)
	}

	taken, err = m.exists(ctx, "check admin", func(ctx context.Context) (bool, error) {
		return m.admins.ExistsByEmail(ctx, email)
	})
	if err != nil {
		return Organization{}, err
	}
	if taken {
		return Organization{}, newError(ErrConflict, msgAdminExists)
	}

	taken, err = m.exists(ctx, "check partition", func(ctx context.Context) (bool, error) {
		return m.parts.Exists(ctx, name)
	})
	if err != nil {
		return Organization{}, err
	}
	if taken {
		// A partition with no organization is left over from an earlier
		// failure; it is never adopted.
		m.log.Warn("create: partition exists without organization",
			zap.String("organization", name),
			zap.String("partition", models.PartitionName(name)))
		return Organization{}, newError(ErrConflict, msgOrgExists)
	}

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return Organization{}, fmt.Errorf("hash password: %w", err)
	}

	now := m.now().UTC()
	org := models.Organization{
		ID:             primitive.NewObjectID(),
		Name:           name,
		CollectionName: models.PartitionName(name),
		AdminEmail:     email,
		CreatedAt:      now,
	}
	admin := models.Admin{
		ID:               primitive.NewObjectID(),
		Email:            email,
		HashedPassword:   hash,
		OrganizationName: name,
		CreatedAt:        now,
	}

	// Not retried: a create that reached the server before a network error
	// would report ErrExists on the second attempt.
	if err := m.parts.Create(ctx, name, now); err != nil {
		if errors.Is(err, partitionstore.ErrExists) {
			return Organization{}, newError(ErrConflict, msgOrgExists)
		}
		m.undoPartition(ctx, org, err)
		return Organization{}, storeError("create partition", err)
	}

	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := m.orgs.Create(ctx, org); err != nil {
			return err
		}
		_, err := m.admins.Create(ctx, admin)
		return err
	})
	if err != nil {
		m.undoCreate(ctx, org, err)
		switch {
		case errors.Is(err, organizationstore.ErrDuplicateOrganization):
			return Organization{}, newError(ErrConflict, msgOrgExists)
		case errors.Is(err, adminstore.ErrDuplicateEmail):
			return Organization{}, newError(ErrConflict, msgAdminExists)
		}
		return Organization{}, storeError("insert catalog records", err)
	}

	m.log.Info("organization created",
		zap.String("organization", name),
		zap.String("partition", org.CollectionName),
		zap.String("admin_email", email))
	return publicView(org), nil
}

// undoCreate removes what a failed Create wrote. Without a transaction the
// organization record may already be committed, so it is removed by the
// ID generated for this call only.
func (m *Manager) undoCreate(ctx context.Context, org models.Organization, cause error) {
	ctx, cancel := detached(ctx)
	defer cancel()

	m.log.Warn("create: catalog write failed, undoing",
		zap.String("organization", org.Name), zap.Error(cause))

	if _, err := m.orgs.DeleteByID(ctx, org.ID); err != nil {
		m.partial("create", "undo_catalog", "organization record without admin", err,
			zap.String("organization", org.Name))
	}
	if _, err := m.parts.Drop(ctx, org.Name); err != nil {
		m.partial("create", "undo_partition", "partition without organization", err,
			zap.String("organization", org.Name),
			zap.String("partition", org.CollectionName))
	}
}

// undoPartition drops a partition that Create may have half-written
// before failing. Left in place it would block the name for good.
func (m *Manager) undoPartition(ctx context.Context, org models.Organization, cause error) {
	ctx, cancel := detached(ctx)
	defer cancel()

	m.log.Warn("create: partition write failed, undoing",
		zap.String("organization", org.Name), zap.Error(cause))

	if _, err := m.parts.Drop(ctx, org.Name); err != nil {
		m.partial("create", "partition", "partition without organization", err,
			zap.String("organization", org.Name),
			zap.String("partition", org.CollectionName))
	}
}
