package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/elizabethadegbaju/crystalims/pkg/auth"
	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

type fakeSessionChecker struct {
	known map[string]bool
}

func (f *fakeSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	return f.known[accessID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 30}
}

func mintToken(t *testing.T, cfg config.JWTConfig, jti string, companyID *uuid.UUID, roles ...enums.MemberRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:    uuid.New(),
		CompanyID: companyID,
		Roles:     roles,
		JTI:       jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	checker := &fakeSessionChecker{known: map[string]bool{"sess-1": true}}
	companyID := uuid.New()

	var gotUser, gotCompany uuid.UUID
	var gotManages bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotCompany = CompanyIDFromContext(r.Context())
		gotManages = ActorManages(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(cfg, checker, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "sess-1", &companyID, enums.MemberRoleAdmin))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser == uuid.Nil {
		t.Fatal("user id missing from context")
	}
	if gotCompany != companyID {
		t.Fatalf("company id mismatch: got %s want %s", gotCompany, companyID)
	}
	if !gotManages {
		t.Fatal("admin grant should manage")
	}
}

func TestAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, &fakeSessionChecker{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for name, header := range map[string]string{
		"missing":   "",
		"empty":     "Bearer ",
		"malformed": "Bearer not-a-jwt",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", name, resp.Code)
		}
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	checker := &fakeSessionChecker{known: map[string]bool{}}
	handler := Auth(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "revoked", nil, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session must be rejected, got %d", resp.Code)
	}
}

func TestRequireManagerRedirectsNonManagers(t *testing.T) {
	handler := RequireManager(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	member := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	member = member.WithContext(WithRoles(member.Context(), []enums.MemberRole{enums.MemberRoleMember}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, member)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != "/api/v1/profile" {
		t.Fatalf("unexpected redirect target %q", got)
	}

	manager := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	manager = manager.WithContext(WithRoles(manager.Context(), []enums.MemberRole{enums.MemberRoleSuperuser}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for superuser got %d", resp.Code)
	}
}
