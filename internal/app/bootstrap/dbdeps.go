// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient *mongo.Client
	CatalogDB   *mongo.Database // organizations, admins
	TenantDB    *mongo.Database // org_<name> partitions; may equal CatalogDB
}
