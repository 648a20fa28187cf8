// internal/app/store/partitions/partitionstore.go
package partitionstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes returned by createCollection / renameCollection.
const (
	codeNamespaceNotFound = 26
	codeNamespaceExists   = 48
)

var (
	ErrNotFound = errors.New("partition not found")
	ErrExists   = errors.New("partition already exists")
)

// Store manages the per-organization collections. Partitions live in a
// single database which may or may not be the catalog database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New binds a Store to the database that holds tenant partitions.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

func (s *Store) namespace(orgName string) string {
	return s.db.Name() + "." + models.PartitionName(orgName)
}

// Exists reports whether the partition for orgName has been materialized.
func (s *Store) Exists(ctx context.Context, orgName string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: models.PartitionName(orgName)}})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// List returns the organization names of every materialized partition,
// sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{
		"name": bson.M{"$regex": "^" + regexp.QuoteMeta(models.PartitionPrefix)},
	})
	if err != nil {
		return nil, err
	}
	orgs := make([]string, 0, len(names))
	for _, n := range names {
		orgs = append(orgs, strings.TrimPrefix(n, models.PartitionPrefix))
	}
	slices.Sort(orgs)
	return orgs, nil
}

// Create materializes the partition and seeds it with an init marker so
// the collection is visible even on servers that create lazily.
func (s *Store) Create(ctx context.Context, orgName string, createdAt time.Time) error {
	name := models.PartitionName(orgName)
	if err := s.db.CreateCollection(ctx, name); err != nil {
		if hasCode(err, codeNamespaceExists) {
			return ErrExists
		}
		return err
	}
	coll := s.db.Collection(name)
	if _, err := coll.InsertOne(ctx, bson.M{"type": "init", "created_at": createdAt}); err != nil {
		// No half-created partitions: the collection goes with the marker.
		if dropErr := coll.Drop(context.WithoutCancel(ctx)); dropErr != nil {
			return fmt.Errorf("insert init marker: %w (drop: %v)", err, dropErr)
		}
		return fmt.Errorf("insert init marker: %w", err)
	}
	return nil
}

// Rename moves the partition of from to the partition of to.
// ErrNotFound means from was never materialized; ErrExists means the
// target name is already taken.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	err := s.client.Database("admin").RunCommand(ctx, bson.D{
		{Key: "renameCollection", Value: s.namespace(from)},
		{Key: "to", Value: s.namespace(to)},
	}).Err()
	switch {
	case err == nil:
		return nil
	case hasCode(err, codeNamespaceNotFound):
		return ErrNotFound
	case hasCode(err, codeNamespaceExists):
		return ErrExists
	default:
		return err
	}
}

// Drop removes the partition. Dropping an absent partition is not an
// error; the returned bool tells whether anything was there.
func (s *Store) Drop(ctx context.Context, orgName string) (bool, error) {
	existed, err := s.Exists(ctx, orgName)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	if err := s.db.Collection(models.PartitionName(orgName)).Drop(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func hasCode(err error, code int32) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
