package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (http.Handler, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec(strings.Repeat("s", auth.MinSecretLength), time.Hour)
	require.NoError(t, err)
	gate, err := auth.NewGate()
	require.NoError(t, err)

	ok := func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		w.Write([]byte(id.Username))
	}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Auth(codec))
		r.With(Permit(gate, auth.OpReadDocuments)).Get("/docs", ok)
		r.With(RequireRole(gate, models.RoleAdmin)).Get("/admin", ok)
	})
	return r, codec
}

func token(t *testing.T, codec *auth.Codec, roles ...models.Role) string {
	t.Helper()
	tok, err := codec.Issue(auth.Identity{UserID: "u1", Username: "alice", Roles: models.NewRoleSet(roles...)})
	require.NoError(t, err)
	return tok
}

func do(h http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRejectsMissingOrBadTokens(t *testing.T) {
	h, _ := testRouter(t)
	for _, authz := range []string{"", "Bearer", "Basic abc", "Bearer not.a.token"} {
		rec := do(h, "/docs", authz)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, authz)
		assert.JSONEq(t, `{"error":"authentication required","status":401}`, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	h, codec := testRouter(t)
	rec := do(h, "/docs", "Bearer "+token(t, codec, models.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = do(h, "/docs", "bearer "+token(t, codec, models.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code, "scheme is case-insensitive")
}

func TestRoleGuards(t *testing.T) {
	h, codec := testRouter(t)
	user := "Bearer " + token(t, codec, models.RoleUser)
	admin := "Bearer " + token(t, codec, models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, do(h, "/admin", user).Code)
	assert.Equal(t, http.StatusOK, do(h, "/admin", admin).Code)
	assert.Equal(t, http.StatusOK, do(h, "/docs", admin).Code, "admin inherits user grants")
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/documents/my-files", nil)
	req.Header.Set("Origin", "https://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/documents/my-files", nil)
	req.Header.Set("Origin", "https://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
