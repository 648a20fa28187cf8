package organizationstore_test

import (
	"errors"
	"testing"

	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"github.com/dalemusser/tenanthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		Name:       "acme",
		AdminEmail: "admin@acme.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CollectionName != "org_acme" {
		t.Errorf("CollectionName: got %q, want org_acme", created.CollectionName)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.ID != created.ID || got.AdminEmail != "admin@acme.com" {
		t.Errorf("GetByName: got %+v", got)
	}
}

func TestStore_Create_KeepsPresetID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Organization{ID: id, Name: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != id {
		t.Errorf("ID: got %s, want %s", created.ID.Hex(), id.Hex())
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Organization{Name: "acme"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Name: "acme"})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_GetByName_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByName(ctx, "nobody")
	if !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ExistsByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "acme", "admin@acme.com")

	tests := []struct {
		name string
		want bool
	}{
		{"acme", true},
		{"ACME", false},
		{"acme-corp", false},
	}
	for _, tt := range tests {
		got, err := store.ExistsByName(ctx, tt.name)
		if err != nil {
			t.Fatalf("ExistsByName(%q) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ExistsByName(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStore_Rename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "acme", "admin@acme.com")

	if err := store.Rename(ctx, "acme", "acme-corp", "boss@acme.com"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if _, err := store.GetByName(ctx, "acme"); !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
	got, err := store.GetByName(ctx, "acme-corp")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.ID != org.ID {
		t.Error("rename should keep the record's ID")
	}
	if got.CollectionName != "org_acme-corp" {
		t.Errorf("CollectionName: got %q", got.CollectionName)
	}
	if got.AdminEmail != "boss@acme.com" {
		t.Errorf("AdminEmail: got %q", got.AdminEmail)
	}
}

func TestStore_Rename_SameName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "acme", "admin@acme.com")

	if err := store.Rename(ctx, "acme", "acme", "boss@acme.com"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	got, err := store.GetByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.AdminEmail != "boss@acme.com" {
		t.Errorf("AdminEmail: got %q", got.AdminEmail)
	}
}

func TestStore_Rename_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "acme", "admin@acme.com")
	fixtures.CreateOrganization(ctx, "globex", "admin@globex.com")

	if err := store.Rename(ctx, "acme", "globex", "admin@acme.com"); !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("rename onto existing name: got %v", err)
	}
	if err := store.Rename(ctx, "nobody", "somebody", "x@y.com"); !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("rename missing org: got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "acme", "admin@acme.com")
	globex := fixtures.CreateOrganization(ctx, "globex", "admin@globex.com")

	n, err := store.DeleteByName(ctx, "acme")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByName: n=%d err=%v", n, err)
	}
	n, err = store.DeleteByName(ctx, "acme")
	if err != nil || n != 0 {
		t.Errorf("second DeleteByName: n=%d err=%v", n, err)
	}

	n, err = store.DeleteByID(ctx, globex.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByID: n=%d err=%v", n, err)
	}
	if ok, _ := store.ExistsByName(ctx, "globex"); ok {
		t.Error("globex still exists")
	}
}

func TestStore_ListNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"globex", "acme", "initech"} {
		if _, err := store.Create(ctx, models.Organization{Name: name}); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	names, err := store.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	want := []string{"acme", "globex", "initech"}
	if len(names) != len(want) {
		t.Fatalf("ListNames: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListNames[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}
