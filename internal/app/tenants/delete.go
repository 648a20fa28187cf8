package tenants

import (
	"context"
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/retry"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.uber.org/zap"
)

// Delete removes a tenant. Authorization is checked before anything is
// read so the response does not reveal whether other organizations exist.
func (m *Manager) Delete(ctx context.Context, orgName string, as Principal) (err error) {
	start := m.now()
	defer func() { metrics.ObserveLifecycle("delete", err, time.Since(start)) }()

	if as.OrganizationName != orgName {
		return newError(ErrForbidden, msgForbiddenDelete)
	}

	dropped, err := retry.Do(ctx, m.retry, "drop partition", func(ctx context.Context) (bool, error) {
		return m.parts.Drop(ctx, orgName)
	})
	if err != nil {
		return storeError("drop partition", err)
	}
	if !dropped {
		m.log.Info("delete: no partition to drop",
			zap.String("organization", orgName),
			zap.String("partition", models.PartitionName(orgName)))
	}

	// Admins go first so an interrupted delete never leaves an admin
	// pointing at a missing organization.
	var orgs, admins int64
	err = retry.Exec(ctx, m.retry, "delete catalog records", func(ctx context.Context) error {
		return m.tx.WithTransaction(ctx, func(ctx context.Context) error {
			var err error
			if admins, err = m.admins.DeleteByOrganization(ctx, orgName); err != nil {
				return err
			}
			orgs, err = m.orgs.DeleteByName(ctx, orgName)
			return err
		})
	})
	if err != nil {
		inconsistent := "catalog records remain after partition drop"
		if !dropped {
			inconsistent = "catalog records remain, no partition was dropped"
		}
		m.partial("delete", "catalog", inconsistent, err,
			zap.String("organization", orgName),
			zap.Bool("partition_dropped", dropped))
		return storeError("delete catalog records", err)
	}
	if orgs == 0 {
		m.log.Warn("delete: organization record already gone", zap.String("organization", orgName))
	}

	m.log.Info("organization deleted",
		zap.String("organization", orgName),
		zap.Int64("admins", admins),
		zap.Bool("partition_dropped", dropped))
	return nil
}
