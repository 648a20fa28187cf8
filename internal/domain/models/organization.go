// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a tenant's catalog record.
//
// CollectionName is always PartitionName(Name); the lifecycle manager
// recomputes it on every write that touches Name.
type Organization struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	CollectionName string             `bson:"collection_name"`
	AdminEmail     string             `bson:"admin_email"` // denormalized from the linked Admin
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// PartitionPrefix is prepended to an organization name to form its partition name.
const PartitionPrefix = "org_"

// PartitionName returns the name of the data partition owned by the
// organization called orgName. The result is persisted in the catalog
// and used as a collection name, so it must never change shape.
func PartitionName(orgName string) string {
	return PartitionPrefix + orgName
}
