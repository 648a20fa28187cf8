package tenants

import (
	"context"
	"errors"
	"fmt"

	adminstore "github.com/dalemusser/tenanthub/internal/app/store/admins"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/system/inputval"
	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/retry"
	"github.com/dalemusser/tenanthub/internal/domain/models"
	"go.uber.org/zap"
)

// Login checks an admin's password and issues an access token. Unknown
// email and wrong password produce the same error.
func (m *Manager) Login(ctx context.Context, email, password string) (credentials.Token, error) {
	email = inputval.NormalizeEmail(email)

	admin, err := retry.Do(ctx, m.retry, "get admin", func(ctx context.Context) (models.Admin, error) {
		return m.admins.GetByEmail(ctx, email)
	})
	if errors.Is(err, adminstore.ErrNotFound) {
		metrics.ObserveLogin("denied")
		return credentials.Token{}, newError(ErrInvalidCredentials, msgBadLogin)
	}
	if err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		return credentials.Token{}, storeError("get admin", err)
	}
	if !m.hasher.Verify(password, admin.HashedPassword) {
		metrics.ObserveLogin("denied")
		return credentials.Token{}, newError(ErrInvalidCredentials, msgBadLogin)
	}

	tok, err := m.tokens.Issue(admin.Email, admin.OrganizationName)
	if err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		return credentials.Token{}, fmt.Errorf("issue token: %w", err)
	}
	metrics.ObserveLogin(metrics.ResultOK)
	m.log.Info("admin logged in",
		zap.String("admin_email", admin.Email),
		zap.String("organization", admin.OrganizationName))
	return tok, nil
}

// Authenticate resolves a bearer token to the admin it was issued to. The
// organization comes from the admin record, not the token, so a token
// issued before a rename still authorizes against the current name.
func (m *Manager) Authenticate(ctx context.Context, raw string) (Principal, error) {
	claims, err := m.tokens.Validate(raw)
	if err != nil {
		return Principal{}, &Error{kind: ErrInvalidCredentials, msg: msgBadToken, cause: err}
	}

	admin, err := retry.Do(ctx, m.retry, "get admin", func(ctx context.Context) (models.Admin, error) {
		return m.admins.GetByEmail(ctx, claims.Subject)
	})
	if errors.Is(err, adminstore.ErrNotFound) {
		return Principal{}, newError(ErrInvalidCredentials, msgBadToken)
	}
	if err != nil {
		return Principal{}, storeError("get admin", err)
	}
	return Principal{Email: admin.Email, OrganizationName: admin.OrganizationName}, nil
}
