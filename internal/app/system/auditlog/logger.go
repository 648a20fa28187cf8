// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/tenanthub/internal/app/store/audit"
	"github.com/dalemusser/tenanthub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login events.
	Auth string
	// Admin controls logging for organization lifecycle events.
	Admin string
}

// Validate reports an unknown mode.
func (c Config) Validate() error {
	for _, m := range []string{c.Auth, c.Admin} {
		switch m {
		case ModeAll, ModeDB, ModeLog, ModeOff:
		default:
			return fmt.Errorf("audit mode %q: want all, db, log or off", m)
		}
	}
	return nil
}

// Recorder persists audit events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via a Recorder) and structured logs (via zap).
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.OrganizationName != "" {
		fields = append(fields, zap.String("organization", event.OrganizationName))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers can run without auditing.
// Store failures are logged and never reach the caller.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		// Recorded even if the request was cancelled after the change landed.
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, event audit.Event) audit.Event {
	event.IP = ratelimit.ClientIP(r)
	event.UserAgent = r.UserAgent()
	return event
}

// --- Authentication Events ---

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     email,
		Success:   true,
	}))
}

// LoginFailed logs a rejected login. The reason is the same for unknown
// emails and wrong passwords.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Actor:         attemptedEmail,
		Success:       false,
		FailureReason: "invalid credentials",
	}))
}

// LoginRateLimited logs a login refused by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		Actor:         attemptedEmail,
		Success:       false,
		FailureReason: "rate limited",
	}))
}

// --- Admin Events ---

// OrgCreated logs a provisioned organization.
func (l *Logger) OrgCreated(ctx context.Context, r *http.Request, orgName, adminEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:         audit.CategoryAdmin,
		EventType:        audit.EventOrgCreated,
		OrganizationName: orgName,
		Actor:            adminEmail,
		Success:          true,
	}))
}

// OrgUpdated logs a rename or credential change.
func (l *Logger) OrgUpdated(ctx context.Context, r *http.Request, actor, fromName, toName, newEmail string) {
	details := map[string]string{"new_admin_email": newEmail}
	if fromName != toName {
		details["previous_name"] = fromName
	}
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:         audit.CategoryAdmin,
		EventType:        audit.EventOrgUpdated,
		OrganizationName: toName,
		Actor:            actor,
		Success:          true,
		Details:          details,
	}))
}

// OrgDeleted logs a deleted organization.
func (l *Logger) OrgDeleted(ctx context.Context, r *http.Request, actor, orgName string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:         audit.CategoryAdmin,
		EventType:        audit.EventOrgDeleted,
		OrganizationName: orgName,
		Actor:            actor,
		Success:          true,
	}))
}
