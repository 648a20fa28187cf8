// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSecretKey = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretBytes is the shortest HS256 secret accepted in prod.
const minProdSecretBytes = 32

// appConfigKeys defines the configuration keys for TenantHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, secret_key, etc.
//   - Environment variables: TENANTHUB_MONGO_URI, TENANTHUB_SECRET_KEY, etc.
//   - Command-line flags: --mongo_uri, --secret_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "master_db", Desc: "Catalog database (organizations, admins)"},
	{Name: "tenant_database", Default: "", Desc: "Database for org_<name> partitions (blank = mongo_database)"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "secret_key", Default: devSecretKey, Desc: "Access token signing secret (must be strong in production)"},
	{Name: "access_token_expire_minutes", Default: 30, Desc: "Access token lifetime in minutes"},
	{Name: "bcrypt_cost", Default: credentials.DefaultBcryptCost, Desc: "bcrypt cost for admin passwords"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per client IP per window (0 disables)"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window (e.g., 1m, 30s)"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Take the client IP from X-Forwarded-For / X-Real-IP (only behind a proxy that sets them)"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single lookups"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for create/update/delete"},
	{Name: "store_retry_max_elapsed", Default: "2s", Desc: "Upper bound on the single retry of a transient store error"},

	{Name: "reconcile_interval", Default: "10m", Desc: "How often to report catalog/partition drift (0 disables)"},

	{Name: "audit_auth", Default: "all", Desc: "Login audit events: all, db, log or off"},
	{Name: "audit_admin", Default: "all", Desc: "Organization audit events: all, db, log or off"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env (TENANTHUB_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TENANTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		TenantDatabase:   appValues.String("tenant_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SecretKey:   appValues.String("secret_key"),
		TokenTTL:    time.Duration(appValues.Int("access_token_expire_minutes")) * time.Minute,
		BcryptCost:  appValues.Int("bcrypt_cost"),
		LoginLimit:  appValues.Int("login_rate_limit"),
		LoginWindow: appValues.Duration("login_rate_window", time.Minute),

		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),

		TimeoutShort:        appValues.Duration("timeout_short", 5*time.Second),
		TimeoutLong:         appValues.Duration("timeout_long", 30*time.Second),
		StoreRetryMaxElapse: appValues.Duration("store_retry_max_elapsed", 2*time.Second),
		ReconcileInterval:   appValues.Duration("reconcile_interval", 10*time.Minute),

		Audit: auditlog.Config{
			Auth:  appValues.String("audit_auth"),
			Admin: appValues.String("audit_admin"),
		},
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg, logger)
}

func validateAppConfig(env string, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("access_token_expire_minutes must be positive")
	}
	if appCfg.LoginLimit < 0 || (appCfg.LoginLimit > 0 && appCfg.LoginWindow <= 0) {
		return fmt.Errorf("login_rate_limit and login_rate_window must be positive")
	}
	if appCfg.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile_interval must not be negative")
	}
	if err := appCfg.Audit.Validate(); err != nil {
		return err
	}

	if env == "prod" {
		if appCfg.SecretKey == devSecretKey || len(appCfg.SecretKey) < minProdSecretBytes {
			return fmt.Errorf("secret_key must be set to at least %d bytes in production", minProdSecretBytes)
		}
	} else if appCfg.SecretKey == devSecretKey {
		logger.Warn("using the development secret_key; set TENANTHUB_SECRET_KEY before deploying")
	}
	return nil
}
