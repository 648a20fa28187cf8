// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings (ports, TLS, logging, CORS).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Catalog database: organizations and admins
	TenantDatabase   string // Database holding org_<name> partitions; blank means MongoDatabase
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Access tokens
	SecretKey   string        // HS256 signing secret
	TokenTTL    time.Duration // access_token_expire_minutes
	BcryptCost  int
	LoginLimit  int           // login attempts per client IP per window
	LoginWindow time.Duration

	// Client IP from forwarding headers (behind a trusted proxy only)
	TrustProxyHeaders bool

	// Store deadlines
	TimeoutShort        time.Duration // single lookups
	TimeoutLong         time.Duration // lifecycle operations
	StoreRetryMaxElapse time.Duration // bound on the one transient retry

	// How often catalog and partitions are compared; 0 disables
	ReconcileInterval time.Duration

	// Audit destinations per category: all, db, log or off
	Audit auditlog.Config
}

// PartitionDatabase returns the database name partitions live in.
func (c AppConfig) PartitionDatabase() string {
	if c.TenantDatabase != "" {
		return c.TenantDatabase
	}
	return c.MongoDatabase
}
