package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures inserts catalog records and partitions directly, bypassing the
// stores under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization inserts an organization record (no partition, no admin).
func (f *Fixtures) CreateOrganization(ctx context.Context, name, adminEmail string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:             primitive.NewObjectID(),
		Name:           name,
		CollectionName: models.PartitionName(name),
		AdminEmail:     adminEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateAdmin inserts an admin record with an already-hashed password.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, orgName, hashedPassword string) models.Admin {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Admin{
		ID:               primitive.NewObjectID(),
		Email:            email,
		HashedPassword:   hashedPassword,
		OrganizationName: orgName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

// CreatePartition creates the partition collection for orgName with one
// document in it.
func (f *Fixtures) CreatePartition(ctx context.Context, orgName string) {
	f.t.Helper()

	_, err := f.db.Collection(models.PartitionName(orgName)).InsertOne(ctx, bson.M{
		"type":       "init",
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test partition: %v", err)
	}
}

// CollectionNames lists the collections currently in the database.
func (f *Fixtures) CollectionNames(ctx context.Context) []string {
	f.t.Helper()

	names, err := f.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		f.t.Fatalf("failed to list collections: %v", err)
	}
	return names
}
