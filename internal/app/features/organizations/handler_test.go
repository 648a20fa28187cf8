package organizations_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/features/organizations"
	"github.com/dalemusser/tenanthub/internal/app/store/audit"
	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"github.com/dalemusser/tenanthub/internal/app/system/bearer"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"github.com/dalemusser/tenanthub/internal/testutil"
	"go.uber.org/zap"
)

type testServer struct {
	router http.Handler
	mgr    *tenants.Manager
	mem    *testutil.Memory
	audit  *testutil.AuditRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	mem := testutil.NewMemory()
	mgr := tenants.NewManager(tenants.Deps{
		Organizations: mem.Organizations(),
		Admins:        mem.Admins(),
		Partitions:    mem.Partitions(),
		Hasher:        credentials.NewHasher(4),
		Tokens:        credentials.NewTokenIssuer("org-test-secret-org-test-secret-xx", 30*time.Minute),
		Tx:            mem,
	}, logger)
	rec := &testutil.AuditRecorder{}
	auditLog := auditlog.New(rec, logger, auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})
	h := organizations.NewHandler(mgr, auditLog, apperrors.NewErrorLogger(logger), logger)
	return &testServer{
		router: organizations.Routes(h, bearer.Require(mgr, logger)),
		mgr:    mgr,
		mem:    mem,
		audit:  rec,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) *testutil.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := testutil.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T, name, email, password string) *testutil.ResponseRecorder {
	t.Helper()
	return s.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/create", map[string]string{
		"organization_name": name,
		"email":             email,
		"password":          password,
	}), "")
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	tok, err := s.mgr.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return tok.AccessToken
}

func assertOrganization(t *testing.T, rec *testutil.ResponseRecorder, name, collection, email string) {
	t.Helper()
	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	if body["organization_name"] != name || body["collection_name"] != collection || body["admin_email"] != email {
		t.Errorf("body: got %v, want {%s %s %s}", body, name, collection, email)
	}
}

func TestAcmeOverHTTP(t *testing.T) {
	s := newTestServer(t)

	assertOrganization(t, s.create(t, "acme", "admin@acme.com", "pw1"), "acme", "org_acme", "admin@acme.com")
	assertOrganization(t, s.do(t, testutil.NewRequest(http.MethodGet, "/get?organization_name=acme"), ""),
		"acme", "org_acme", "admin@acme.com")

	token := s.login(t, "admin@acme.com", "pw1")
	rec := s.do(t, testutil.NewJSONRequest(t, http.MethodPut, "/update", map[string]string{
		"organization_name": "acme-corp",
		"email":             "admin@acme.com",
		"password":          "pw2",
	}), token)
	assertOrganization(t, rec, "acme-corp", "org_acme-corp", "admin@acme.com")

	rec = s.do(t, testutil.NewRequest(http.MethodGet, "/get?organization_name=acme"), "")
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Organization not found")

	assertOrganization(t, s.do(t, testutil.NewRequest(http.MethodGet, "/get?organization_name=acme-corp"), ""),
		"acme-corp", "org_acme-corp", "admin@acme.com")
}

func TestHandleCreate_Conflicts(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1").AssertStatus(t, http.StatusOK)

	rec := s.create(t, "acme", "other@acme.com", "pw1")
	rec.AssertStatus(t, http.StatusBadRequest)
	if got := rec.DecodeJSON(t)["detail"]; got != "Organization already exists" {
		t.Errorf("detail: got %v", got)
	}

	rec = s.create(t, "globex", "admin@acme.com", "pw1")
	rec.AssertStatus(t, http.StatusBadRequest)
	if got := rec.DecodeJSON(t)["detail"]; got != "Admin email already registered" {
		t.Errorf("detail: got %v", got)
	}
}

func TestHandleCreate_BadBody(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewRequest(http.MethodPost, "/create")
	req.Body = http.NoBody
	s.do(t, req, "").AssertStatus(t, http.StatusBadRequest)

	s.create(t, "", "admin@acme.com", "pw").AssertStatus(t, http.StatusBadRequest)
}

func TestHandleUpdate_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1")

	body := map[string]string{"organization_name": "x", "email": "admin@acme.com", "password": "pw"}

	rec := s.do(t, testutil.NewJSONRequest(t, http.MethodPut, "/update", body), "")
	rec.AssertStatus(t, http.StatusUnauthorized)
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate: got %q", got)
	}

	s.do(t, testutil.NewJSONRequest(t, http.MethodPut, "/update", body), "not-a-jwt").
		AssertStatus(t, http.StatusUnauthorized)

	if _, ok := s.mem.Organization("acme"); !ok {
		t.Error("organization changed by unauthenticated request")
	}
}

func TestHandleUpdate_NewNameExists(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1")
	s.create(t, "globex", "admin@globex.com", "pw1")
	token := s.login(t, "admin@acme.com", "pw1")

	rec := s.do(t, testutil.NewJSONRequest(t, http.MethodPut, "/update", map[string]string{
		"organization_name": "globex",
		"email":             "admin@acme.com",
		"password":          "pw2",
	}), token)

	rec.AssertStatus(t, http.StatusBadRequest)
	if got := rec.DecodeJSON(t)["detail"]; got != "New Organization name already exists" {
		t.Errorf("detail: got %v", got)
	}
}

func TestHandleDelete(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1")
	s.create(t, "globex", "admin@globex.com", "pw1")
	token := s.login(t, "admin@acme.com", "pw1")

	rec := s.do(t, testutil.NewRequest(http.MethodDelete, "/delete?organization_name=globex"), token)
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "Not authorized to delete this organization")

	rec = s.do(t, testutil.NewRequest(http.MethodDelete, "/delete?organization_name=acme"), token)
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.DecodeJSON(t)["message"]; got != "Organization deleted successfully" {
		t.Errorf("message: got %v", got)
	}

	s.do(t, testutil.NewRequest(http.MethodGet, "/get?organization_name=acme"), "").
		AssertStatus(t, http.StatusNotFound)
	if s.mem.HasPartition("acme") {
		t.Error("partition not dropped")
	}
	if _, ok := s.mem.Organization("globex"); !ok {
		t.Error("other organization deleted")
	}

	// The admin is gone, so the old token no longer authenticates.
	s.do(t, testutil.NewRequest(http.MethodDelete, "/delete?organization_name=acme"), token).
		AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleDelete_PrincipalFromContext(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1")

	logger := zap.NewNop()
	h := organizations.NewHandler(s.mgr, nil, apperrors.NewErrorLogger(logger), logger)
	req := testutil.WithPrincipal(testutil.NewRequest(http.MethodDelete, "/org/delete?organization_name=acme"),
		"admin@acme.com", "acme")
	rec := testutil.NewRecorder()

	h.HandleDelete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if _, ok := s.mem.Organization("acme"); ok {
		t.Error("organization not deleted")
	}
}

func TestHandlers_AuditTrail(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "acme", "admin@acme.com", "pw1").AssertStatus(t, http.StatusOK)
	s.create(t, "acme", "other@acme.com", "pw1").AssertStatus(t, http.StatusBadRequest)
	token := s.login(t, "admin@acme.com", "pw1")

	s.do(t, testutil.NewJSONRequest(t, http.MethodPut, "/update", map[string]string{
		"organization_name": "acme-corp",
		"email":             "ops@acme.com",
		"password":          "pw2",
	}), token).AssertStatus(t, http.StatusOK)

	token = s.login(t, "ops@acme.com", "pw2")
	s.do(t, testutil.NewRequest(http.MethodDelete, "/delete?organization_name=acme-corp"), token).
		AssertStatus(t, http.StatusOK)

	want := []string{audit.EventOrgCreated, audit.EventOrgUpdated, audit.EventOrgDeleted}
	got := s.audit.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("audit events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit events: got %v, want %v", got, want)
		}
	}

	events := s.audit.Events()
	if events[1].OrganizationName != "acme-corp" || events[1].Details["previous_name"] != "acme" {
		t.Errorf("update event: %+v", events[1])
	}
	if events[2].Actor != "ops@acme.com" || events[2].OrganizationName != "acme-corp" {
		t.Errorf("delete event: %+v", events[2])
	}
}
