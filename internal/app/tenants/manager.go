// Package tenants owns the tenant lifecycle: creating, renaming and
// deleting an organization together with its admin and its data
// partition, and authenticating that admin.
//
// The catalog (organizations + admins) and the partitions are separate
// stores with no shared transaction. Each operation orders its steps so
// a failure can be undone, and logs what is left inconsistent when the
// undo itself fails.
package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/system/inputval"
	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/retry"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrganizationStore interface {
	Create(ctx context.Context, org models.Organization) (models.Organization, error)
	GetByName(ctx context.Context, name string) (models.Organization, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Rename(ctx context.Context, current, next, adminEmail string) error
	DeleteByName(ctx context.Context, name string) (int64, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type AdminStore interface {
	Create(ctx context.Context, a models.Admin) (models.Admin, error)
	GetByEmail(ctx context.Context, email string) (models.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateIdentity(ctx context.Context, email string, id adminstore.Identity) error
	DeleteByOrganization(ctx context.Context, orgName string) (int64, error)
}

type PartitionStore interface {
	Exists(ctx context.Context, orgName string) (bool, error)
	Create(ctx context.Context, orgName string, createdAt time.Time) error
	Rename(ctx context.Context, from, to string) error
	Drop(ctx context.Context, orgName string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenService interface {
	Issue(email, org string) (credentials.Token, error)
	Validate(raw string) (credentials.Claims, error)
}

// Transactor runs fn atomically when the store can. Store calls made in
// fn must use the ctx it receives.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps are the collaborators a Manager is built from. Tx may be nil, in
// which case catalog writes run without a transaction.
type Deps struct {
	Organizations OrganizationStore
	Admins        AdminStore
	Partitions    PartitionStore
	Hasher        PasswordHasher
	Tokens        TokenService
	Tx            Transactor
	Retry         retry.Policy
}

// Manager is the tenant lifecycle manager. It is safe for concurrent use;
// the store's unique indexes are the only cross-request serialization.
type Manager struct {
	orgs   OrganizationStore
	admins AdminStore
	parts  PartitionStore
	hasher PasswordHasher
	tokens TokenService
	tx     Transactor
	retry  retry.Policy
	log    *zap.Logger
	now    func() time.Time
}

func NewManager(d Deps, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	tx := d.Tx
	if tx == nil {
		tx = direct{}
	}
	rp := d.Retry
	if rp.Log == nil {
		rp.Log = logger
	}
	return &Manager{
		orgs:   d.Organizations,
		admins: d.Admins,
		parts:  d.Partitions,
		hasher: d.Hasher,
		tokens: d.Tokens,
		tx:     tx,
		retry:  rp,
		log:    logger,
		now:    time.Now,
	}
}

type direct struct{}

func (direct) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Organization is the public view of a tenant.
type Organization struct {
	Name           string
	CollectionName string
	AdminEmail     string
}

func publicView(org models.Organization) Organization {
	return Organization{
		Name:           org.Name,
		CollectionName: org.CollectionName,
		AdminEmail:     org.AdminEmail,
	}
}

// Principal is an authenticated admin as of the current request.
type Principal struct {
	Email            string
	OrganizationName string
}

// Get returns the organization called name.
func (m *Manager) Get(ctx context.Context, name string) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, invalidInput(inputval.ErrOrganizationNameRequired)
	}
	org, err := retry.Do(ctx, m.retry, "get organization", func(ctx context.Context) (models.Organization, error) {
		return m.orgs.GetByName(ctx, name)
	})
	if errors.Is(err, organizationstore.ErrNotFound) {
		return Organization{}, newError(ErrNotFound, msgOrgNotFound)
	}
	if err != nil {
		return Organization{}, storeError("get organization", err)
	}
	return publicView(org), nil
}

// validateIdentity checks the (name, email, password) triple shared by
// Create and Rename and returns the normalized name and email.
func validateIdentity(name, email, password string) (string, string, error) {
	n, err := inputval.OrganizationName(name)
	if err != nil {
		return "", "", invalidInput(err)
	}
	e, err := inputval.Email(email)
	if err != nil {
		return "", "", invalidInput(err)
	}
	if err := inputval.Password(password); err != nil {
		return "", "", invalidInput(err)
	}
	return n, e, nil
}

func (m *Manager) exists(ctx context.Context, op string, fn func(ctx context.Context) (bool, error)) (bool, error) {
	ok, err := retry.Do(ctx, m.retry, op, fn)
	if err != nil {
		return false, storeError(op, err)
	}
	return ok, nil
}

// detached returns a context for compensating steps: it survives the
// request being canceled but is still bounded.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeouts.Long())
}

// partial logs and counts a state the compensating steps could not
// repair. inconsistent describes what an operator has to reconcile.
func (m *Manager) partial(op, step, inconsistent string, err error, fields ...zap.Field) {
	metrics.ObservePartialFailure(op, step)
	m.log.Error("tenant lifecycle left inconsistent state",
		append([]zap.Field{
			zap.String("operation", op),
			zap.String("step", step),
			zap.String("inconsistent", inconsistent),
			zap.Error(err),
		}, fields...)...)
}
