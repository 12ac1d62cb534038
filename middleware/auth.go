package middleware

import (
	"net/http"
	"strings"

	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/metrics"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/rs/zerolog/hlog"
)

// TokenVerifier turns a bearer token into an identity; *auth.Codec implements it.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Auth requires a valid bearer token and stores its identity in the request
// context. Every failure answers the same 401 body.
func Auth(tokens TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			id, err := tokens.Verify(raw)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("token rejected")
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Permit lets the request through when the gate allows op for the caller.
// It must run after Auth.
func Permit(gate *auth.Gate, op auth.Operation) func(next http.Handler) http.Handler {
	return guard(func(id auth.Identity) error { return gate.Authorize(id, op) }, op.Resource+":"+op.Action)
}

// RequireRole lets the request through when the caller holds role, directly
// or by inheritance. It must run after Auth.
func RequireRole(gate *auth.Gate, role models.Role) func(next http.Handler) http.Handler {
	return guard(func(id auth.Identity) error { return gate.RequireRole(id, role) }, "role:"+string(role))
}

func guard(check func(auth.Identity) error, label string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if err := check(id); err != nil {
				metrics.AccessDecision(label, false)
				hlog.FromRequest(r).Warn().Str("user_id", id.UserID).Str("required", label).Msg("request forbidden")
				jsonError(w, http.StatusForbidden, `{"error":"access denied","status":403}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	jsonError(w, http.StatusUnauthorized, `{"error":"authentication required","status":401}`)
}

// jsonError is http.Error with a JSON content type.
func jsonError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(body + "\n"))
}
