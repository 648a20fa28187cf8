package validators_test

import (
	"testing"
	"time"

	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	"github.com/dalemusser/tenanthub/internal/app/system/validators"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"github.com/dalemusser/tenanthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"organizations", "admins"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEnsureAll_AcceptsStoreDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := organizationstore.New(db).Create(ctx, models.Organization{
		Name:       "acme",
		AdminEmail: "admin@acme.com",
	}); err != nil {
		t.Errorf("valid organization rejected: %v", err)
	}
	if _, err := adminstore.New(db).Create(ctx, models.Admin{
		Email:            "admin@acme.com",
		HashedPassword:   "$2a$04$abcdefghijklmnopqrstuv",
		OrganizationName: "acme",
	}); err != nil {
		t.Errorf("valid admin rejected: %v", err)
	}
}

func TestEnsureAll_RejectsMalformedDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{"org without prefix", "organizations", bson.M{"name": "acme", "collection_name": "acme", "admin_email": "a@acme.com"}},
		{"org blank name", "organizations", bson.M{"name": "  ", "collection_name": "org_  ", "admin_email": "a@acme.com"}},
		{"org missing admin", "organizations", bson.M{"name": "acme", "collection_name": "org_acme"}},
		{"admin bad email", "admins", bson.M{"email": "nope", "hashed_password": "x", "organization_name": "acme"}},
		{"admin empty hash", "admins", bson.M{"email": "a@acme.com", "hashed_password": "", "organization_name": "acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := bson.M{"_id": primitive.NewObjectID(), "created_at": time.Now()}
			for k, v := range tt.doc {
				doc[k] = v
			}
			if _, err := db.Collection(tt.coll).InsertOne(ctx, doc); err == nil {
				t.Errorf("expected %s to be rejected", tt.name)
			}
		})
	}
}
