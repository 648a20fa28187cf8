// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/tenanthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection holds organization administrators.
const Collection = "admins"

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail = errors.New("an admin with this email already exists")
	ErrNotFound       = errors.New("admin not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return a, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Admin{}, ErrNotFound
	}
	if err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": email}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Identity is the set of admin fields that change together on an
// organization rename.
type Identity struct {
	Email            string
	OrganizationName string
	HashedPassword   string
}

// UpdateIdentity rewrites the admin currently known by email.
func (s *Store) UpdateIdentity(ctx context.Context, email string, id Identity) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
		"email":             id.Email,
		"organization_name": id.OrganizationName,
		"hashed_password":   id.HashedPassword,
		"updated_at":        time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOrganization removes every admin linked to orgName and returns
// how many were removed. More than one means the 1:1 invariant had drifted.
func (s *Store) DeleteByOrganization(ctx context.Context, orgName string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_name": orgName})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
