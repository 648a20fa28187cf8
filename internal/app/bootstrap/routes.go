// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/tenanthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/tenanthub/internal/app/features/health"
	homefeature "github.com/dalemusser/tenanthub/internal/app/features/home"
	loginfeature "github.com/dalemusser/tenanthub/internal/app/features/login"
	organizationsfeature "github.com/dalemusser/tenanthub/internal/app/features/organizations"
	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	"github.com/dalemusser/tenanthub/internal/app/store/audit"
	organizationstore "github.com/dalemusser/tenanthub/internal/app/store/organizations"
	partitionstore "github.com/dalemusser/tenanthub/internal/app/store/partitions"
	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"github.com/dalemusser/tenanthub/internal/app/system/bearer"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/ratelimit"
	"github.com/dalemusser/tenanthub/internal/app/system/retry"
	"github.com/dalemusser/tenanthub/internal/app/system/txn"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// loginLimiter is created in BuildHandler and closed in Shutdown.
var loginLimiter *ratelimit.LoginLimiter

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The lifecycle manager is assembled here
// from the Mongo-backed stores and handed to the features that need it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mgr := tenants.NewManager(tenants.Deps{
		Organizations: organizationstore.New(deps.CatalogDB),
		Admins:        adminstore.New(deps.CatalogDB),
		Partitions:    partitionstore.New(deps.TenantDB),
		Hasher:        credentials.NewHasher(appCfg.BcryptCost),
		Tokens:        credentials.NewTokenIssuer(appCfg.SecretKey, appCfg.TokenTTL),
		Tx:            txn.New(deps.MongoClient, logger),
		Retry:         retry.Policy{MaxElapsed: appCfg.StoreRetryMaxElapse},
	}, logger)

	if appCfg.LoginLimit > 0 {
		loginLimiter = ratelimit.NewLoginLimiter(appCfg.LoginLimit, appCfg.LoginWindow)
	}

	auditLog := auditlog.New(audit.New(deps.CatalogDB), logger, appCfg.Audit)

	return newRouter(mgr, deps.MongoClient, loginLimiter, auditLog, appCfg.TrustProxyHeaders, logger), nil
}

// service is everything the HTTP features need from the lifecycle manager.
type service interface {
	organizationsfeature.Lifecycle
	loginfeature.Authenticator
	bearer.Authenticator
}

// newRouter wires the features. trustProxy makes forwarding headers
// (X-Forwarded-For, X-Real-IP) the client address seen by the login
// limiter and the audit trail; leave it off unless a proxy sets them.
func newRouter(svc service, db healthfeature.Pinger, limiter *ratelimit.LoginLimiter, auditLog *auditlog.Logger, trustProxy bool, logger *zap.Logger) chi.Router {
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)

	// JSON fallbacks; set before mounting so subrouters inherit them.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	healthHandler := healthfeature.NewHandler(db, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Public: POST /admin/login
	loginHandler := loginfeature.NewHandler(svc, limiter, auditLog, errLog, logger)
	r.Mount("/admin", loginfeature.Routes(loginHandler))

	// /org/create and /org/get are public; update and delete require a bearer token.
	orgHandler := organizationsfeature.NewHandler(svc, auditLog, errLog, logger)
	r.Mount("/org", organizationsfeature.Routes(orgHandler, bearer.Require(svc, logger)))

	return r
}
