package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "master_db",
		SecretKey:     strings.Repeat("k", minProdSecretBytes),
		TokenTTL:      30 * time.Minute,
		BcryptCost:    12,
		LoginLimit:    10,
		LoginWindow:   time.Minute,
		Audit:         auditlog.Config{Auth: auditlog.ModeAll, Admin: auditlog.ModeDB},
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid prod", "prod", func(*AppConfig) {}, false},
		{"dev secret allowed in dev", "dev", func(c *AppConfig) { c.SecretKey = devSecretKey }, false},
		{"dev secret rejected in prod", "prod", func(c *AppConfig) { c.SecretKey = devSecretKey }, true},
		{"short secret rejected in prod", "prod", func(c *AppConfig) { c.SecretKey = "short" }, true},
		{"short secret allowed in dev", "dev", func(c *AppConfig) { c.SecretKey = "short" }, false},
		{"empty database", "dev", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"zero ttl", "dev", func(c *AppConfig) { c.TokenTTL = 0 }, true},
		{"negative limit", "dev", func(c *AppConfig) { c.LoginLimit = -1 }, true},
		{"limit without window", "dev", func(c *AppConfig) { c.LoginWindow = 0 }, true},
		{"limiter disabled", "dev", func(c *AppConfig) { c.LoginLimit = 0; c.LoginWindow = 0 }, false},
		{"negative reconcile interval", "dev", func(c *AppConfig) { c.ReconcileInterval = -time.Second }, true},
		{"unknown audit mode", "dev", func(c *AppConfig) { c.Audit.Admin = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(tt.env, cfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPartitionDatabase(t *testing.T) {
	cfg := validConfig()
	if got := cfg.PartitionDatabase(); got != "master_db" {
		t.Errorf("PartitionDatabase() = %q, want catalog database", got)
	}
	cfg.TenantDatabase = "tenants"
	if got := cfg.PartitionDatabase(); got != "tenants" {
		t.Errorf("PartitionDatabase() = %q, want %q", got, "tenants")
	}
}
