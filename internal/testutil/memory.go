package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	partitionstore "github.com/dalemusser/tenanthub/internal/app/store/partitions"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-memory catalog and partition store for lifecycle tests.
// It mirrors the Mongo stores' sentinel errors and unique constraints, and
// lets a test inject failures into individual store calls.
type Memory struct {
	mu     sync.Mutex
	orgs   map[string]models.Organization // by name
	admins map[string]models.Admin        // by email
	parts  map[string]time.Time           // by organization name
	faults map[string][]error
	after  map[string][]error
	calls  []string
}

func NewMemory() *Memory {
	return &Memory{
		orgs:   map[string]models.Organization{},
		admins: map[string]models.Admin{},
		parts:  map[string]time.Time{},
		faults: map[string][]error{},
		after:  map[string][]error{},
	}
}

// Fail queues errors for op (e.g. "admins.Create"). Each call to op takes
// the next queued entry; a nil entry lets that call run normally.
func (m *Memory) Fail(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = append(m.faults[op], errs...)
}

// FailAfter queues errors returned after op has applied its write, like a
// server that commits and then reports a failure. Only partitions.Create
// honors it.
func (m *Memory) FailAfter(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.after[op] = append(m.after[op], errs...)
}

// Calls returns the store operations invoked so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// enter records op and returns its injected fault, if any. Callers hold mu.
func (m *Memory) enter(op string) error {
	m.calls = append(m.calls, op)
	q := m.faults[op]
	if len(q) == 0 {
		return nil
	}
	m.faults[op] = q[1:]
	return q[0]
}

// leave returns op's queued FailAfter error, if any. Callers hold mu.
func (m *Memory) leave(op string) error {
	q := m.after[op]
	if len(q) == 0 {
		return nil
	}
	m.after[op] = q[1:]
	return q[0]
}

func (m *Memory) Organization(name string) (models.Organization, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[name]
	return o, ok
}

func (m *Memory) Admin(email string) (models.Admin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[email]
	return a, ok
}

func (m *Memory) HasPartition(orgName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.parts[orgName]
	return ok
}

// Partitions lists partition names ("org_<name>"), sorted.
func (m *Memory) PartitionNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.parts))
	for name := range m.parts {
		out = append(out, models.PartitionName(name))
	}
	slices.Sort(out)
	return out
}

// Counts returns the number of organizations, admins and partitions.
func (m *Memory) Counts() (orgs, admins, parts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orgs), len(m.admins), len(m.parts)
}

// PutPartition creates a partition with no catalog records, as a failed
// earlier operation would leave behind.
func (m *Memory) PutPartition(orgName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[orgName] = time.Now().UTC()
}

// WithTransaction gives catalog writes all-or-nothing semantics by
// restoring a snapshot when fn fails. Partition changes are not rolled
// back, as with the real stores.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if err := m.enter("tx"); err != nil {
		m.mu.Unlock()
		return err
	}
	orgs, admins := maps.Clone(m.orgs), maps.Clone(m.admins)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.orgs, m.admins = orgs, admins
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Organizations() *MemoryOrganizations { return &MemoryOrganizations{m} }
func (m *Memory) Admins() *MemoryAdmins               { return &MemoryAdmins{m} }
func (m *Memory) Partitions() *MemoryPartitions       { return &MemoryPartitions{m} }

// MemoryOrganizations behaves like organizationstore.Store.
type MemoryOrganizations struct{ m *Memory }

func (s *MemoryOrganizations) Create(_ context.Context, org models.Organization) (models.Organization, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.Create"); err != nil {
		return models.Organization{}, err
	}
	if _, ok := s.m.orgs[org.Name]; ok {
		return models.Organization{}, organizationstore.ErrDuplicateOrganization
	}
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	org.CollectionName = models.PartitionName(org.Name)
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	org.UpdatedAt = org.CreatedAt
	s.m.orgs[org.Name] = org
	return org, nil
}

func (s *MemoryOrganizations) GetByName(_ context.Context, name string) (models.Organization, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.GetByName"); err != nil {
		return models.Organization{}, err
	}
	org, ok := s.m.orgs[name]
	if !ok {
		return models.Organization{}, organizationstore.ErrNotFound
	}
	return org, nil
}

func (s *MemoryOrganizations) ExistsByName(_ context.Context, name string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.ExistsByName"); err != nil {
		return false, err
	}
	_, ok := s.m.orgs[name]
	return ok, nil
}

func (s *MemoryOrganizations) Rename(_ context.Context, current, next, adminEmail string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.Rename"); err != nil {
		return err
	}
	org, ok := s.m.orgs[current]
	if !ok {
		return organizationstore.ErrNotFound
	}
	if _, taken := s.m.orgs[next]; taken && next != current {
		return organizationstore.ErrDuplicateOrganization
	}
	delete(s.m.orgs, current)
	org.Name = next
	org.CollectionName = models.PartitionName(next)
	org.AdminEmail = adminEmail
	org.UpdatedAt = time.Now().UTC()
	s.m.orgs[next] = org
	return nil
}

func (s *MemoryOrganizations) DeleteByName(_ context.Context, name string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.DeleteByName"); err != nil {
		return 0, err
	}
	if _, ok := s.m.orgs[name]; !ok {
		return 0, nil
	}
	delete(s.m.orgs, name)
	return 1, nil
}

func (s *MemoryOrganizations) DeleteByID(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.DeleteByID"); err != nil {
		return 0, err
	}
	for name, org := range s.m.orgs {
		if org.ID == id {
			delete(s.m.orgs, name)
			return 1, nil
		}
	}
	return 0, nil
}

// MemoryAdmins behaves like adminstore.Store.
type MemoryAdmins struct{ m *Memory }

func (s *MemoryAdmins) Create(_ context.Context, a models.Admin) (models.Admin, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("admins.Create"); err != nil {
		return models.Admin{}, err
	}
	if _, ok := s.m.admins[a.Email]; ok {
		return models.Admin{}, adminstore.ErrDuplicateEmail
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.CreatedAt
	s.m.admins[a.Email] = a
	return a, nil
}

func (s *MemoryAdmins) GetByEmail(_ context.Context, email string) (models.Admin, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("admins.GetByEmail"); err != nil {
		return models.Admin{}, err
	}
	a, ok := s.m.admins[email]
	if !ok {
		return models.Admin{}, adminstore.ErrNotFound
	}
	return a, nil
}

func (s *MemoryAdmins) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("admins.ExistsByEmail"); err != nil {
		return false, err
	}
	_, ok := s.m.admins[email]
	return ok, nil
}

func (s *MemoryAdmins) UpdateIdentity(_ context.Context, email string, id adminstore.Identity) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("admins.UpdateIdentity"); err != nil {
		return err
	}
	a, ok := s.m.admins[email]
	if !ok {
		return adminstore.ErrNotFound
	}
	if _, taken := s.m.admins[id.Email]; taken && id.Email != email {
		return adminstore.ErrDuplicateEmail
	}
	delete(s.m.admins, email)
	a.Email = id.Email
	a.OrganizationName = id.OrganizationName
	a.HashedPassword = id.HashedPassword
	a.UpdatedAt = time.Now().UTC()
	s.m.admins[a.Email] = a
	return nil
}

func (s *MemoryAdmins) DeleteByOrganization(_ context.Context, orgName string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("admins.DeleteByOrganization"); err != nil {
		return 0, err
	}
	var n int64
	for email, a := range s.m.admins {
		if a.OrganizationName == orgName {
			delete(s.m.admins, email)
			n++
		}
	}
	return n, nil
}

func (s *MemoryOrganizations) ListNames(_ context.Context) ([]string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("organizations.ListNames"); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(s.m.orgs)), nil
}

// MemoryPartitions behaves like partitionstore.Store.
type MemoryPartitions struct{ m *Memory }

func (s *MemoryPartitions) Exists(_ context.Context, orgName string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("partitions.Exists"); err != nil {
		return false, err
	}
	_, ok := s.m.parts[orgName]
	return ok, nil
}

func (s *MemoryPartitions) Create(_ context.Context, orgName string, createdAt time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("partitions.Create"); err != nil {
		return err
	}
	if _, ok := s.m.parts[orgName]; ok {
		return partitionstore.ErrExists
	}
	s.m.parts[orgName] = createdAt
	return s.m.leave("partitions.Create")
}

func (s *MemoryPartitions) Rename(_ context.Context, from, to string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("partitions.Rename"); err != nil {
		return err
	}
	created, ok := s.m.parts[from]
	if !ok {
		return partitionstore.ErrNotFound
	}
	if _, taken := s.m.parts[to]; taken {
		return partitionstore.ErrExists
	}
	delete(s.m.parts, from)
	s.m.parts[to] = created
	return nil
}

func (s *MemoryPartitions) Drop(_ context.Context, orgName string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("partitions.Drop"); err != nil {
		return false, err
	}
	if _, ok := s.m.parts[orgName]; !ok {
		return false, nil
	}
	delete(s.m.parts, orgName)
	return true, nil
}

func (s *MemoryPartitions) List(_ context.Context) ([]string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.enter("partitions.List"); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(s.m.parts)), nil
}
