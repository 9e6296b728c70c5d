package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/irmandades/ghala-backend/pkg/auth"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/enums"
)

type stubSessionChecker struct {
	ok  bool
	err error
}

func (s stubSessionChecker) HasSession(ctx context.Context, memberID, tokenID string) (bool, error) {
	return s.ok, s.err
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, memberID uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		MemberID: memberID,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ghala", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionChecker{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ghala", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionChecker{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthSeedsContextFromValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ghala", ExpirationMinutes: 60}
	memberID := uuid.New()
	token := mintTestToken(t, cfg, memberID, enums.MemberRoleTreasurer)

	var captured struct {
		member string
		role   string
	}
	handler := Auth(cfg, stubSessionChecker{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.member = MemberIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if captured.member != memberID.String() {
		t.Fatalf("expected member %s, got %s", memberID, captured.member)
	}
	if captured.role != string(enums.MemberRoleTreasurer) {
		t.Fatalf("expected role treasurer, got %s", captured.role)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "ghala", ExpirationMinutes: 60}
	token := mintTestToken(t, cfg, uuid.New(), enums.MemberRoleMember)

	// token still verifies, but its jti no longer matches the stored session
	handler := Auth(cfg, stubSessionChecker{ok: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
