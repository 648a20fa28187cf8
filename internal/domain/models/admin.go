// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the single administrator of an organization.
type Admin struct {
	ID               primitive.ObjectID `bson:"_id"`
	Email            string             `bson:"email"`
	HashedPassword   string             `bson:"hashed_password"`
	OrganizationName string             `bson:"organization_name"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}
