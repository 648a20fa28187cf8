package credentials

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("expected salted hashes to differ")
	}
	if !h.Verify("pw1", a) || !h.Verify("pw1", b) {
		t.Error("expected both hashes to verify")
	}
	if h.Verify("pw2", a) {
		t.Error("wrong password verified")
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("pw", hash) {
			t.Errorf("Verify(%q) = true, want false", hash)
		}
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	if got := NewHasher(0).Cost; got != DefaultBcryptCost {
		t.Errorf("cost 0: got %d, want %d", got, DefaultBcryptCost)
	}
	if got := NewHasher(99).Cost; got != DefaultBcryptCost {
		t.Errorf("cost 99: got %d, want %d", got, DefaultBcryptCost)
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret-key-min-32-bytes-long", 30*time.Minute)

	tok, err := ti.Issue("admin@acme.com", "acme")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.TokenType != "bearer" {
		t.Errorf("token type: got %q", tok.TokenType)
	}

	claims, err := ti.Validate(tok.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "admin@acme.com" {
		t.Errorf("sub: got %q", claims.Subject)
	}
	if claims.OrgName != "acme" {
		t.Errorf("org_name: got %q", claims.OrgName)
	}
	if claims.ID == "" {
		t.Error("expected jti to be set")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := NewTokenIssuer("test-secret-key-min-32-bytes-long", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	ti.now = func() time.Time { return issued }

	tok, err := ti.Issue("admin@acme.com", "acme")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ti.now = time.Now
	if _, err := ti.Validate(tok.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_BadSignature(t *testing.T) {
	a := NewTokenIssuer("secret-a-secret-a-secret-a-secret-a", time.Minute)
	b := NewTokenIssuer("secret-b-secret-b-secret-b-secret-b", time.Minute)

	tok, err := a.Issue("admin@acme.com", "acme")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Validate(tok.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_MissingSubject(t *testing.T) {
	secret := "test-secret-key-min-32-bytes-long"
	ti := NewTokenIssuer(secret, time.Minute)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OrgName: "acme",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ti.Validate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for missing sub, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	ti := NewTokenIssuer("test-secret-key-min-32-bytes-long", time.Minute)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin@acme.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ti.Validate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractBearer(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractBearer(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
