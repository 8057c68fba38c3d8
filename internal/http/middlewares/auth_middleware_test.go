package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/auth"
	"github.com/jakirh/lunchboard/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func protectedRouter(v middlewares.TokenVerifier, admin bool) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(v)

	r := gin.New()

	chain := []gin.HandlerFunc{mw.RequireAuth()}
	if admin {
		chain = append(chain, mw.RequireAdmin())
	}

	chain = append(chain, func(c *gin.Context) {
		actor, ok := actorctx.From(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "actor missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "isAdmin": actor.IsAdmin})
	})

	r.GET("/protected", chain...)

	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{"missing header", "", &fakeVerifier{}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", &fakeVerifier{}, http.StatusUnauthorized},
		{"empty token", "Bearer   ", &fakeVerifier{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", &fakeVerifier{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", &fakeVerifier{claims: &auth.Claims{UserID: "u1", Email: "p@example.com"}}, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := protectedRouter(tc.verifier, false)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	member := &fakeVerifier{claims: &auth.Claims{UserID: "u1", Email: "p@example.com", IsAdmin: false}}
	adminUser := &fakeVerifier{claims: &auth.Claims{UserID: "u2", Email: "a@example.com", IsAdmin: true}}

	r := protectedRouter(member, true)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("member: got status %d, want 403", w.Code)
	}

	r = protectedRouter(adminUser, true)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("admin: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
}
