package middleware

import (
	"context"
	"net/http"
	"strings"

	"kennel-exchange/internal/platform/httpjson"
	"kennel-exchange/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// AuthContext resuelve claims y sigue siempre; los handlers deciden 401/403.
// Sin verifier (dev/tests) se aceptan X-Debug-User-ID y X-Debug-Role.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	resolve := debugClaims
	if verifier != nil {
		resolve = func(r *http.Request) (auth.Claims, bool) {
			return tokenClaims(r, verifier)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolve(r); ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func debugClaims(r *http.Request) (auth.Claims, bool) {
	uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
	if uid == "" {
		return auth.Claims{}, false
	}
	role := auth.Role(strings.TrimSpace(r.Header.Get("X-Debug-Role")))
	if !role.Valid() {
		role = auth.RoleUser
	}
	return auth.Claims{UserID: uid, Role: role}, true
}

func tokenClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		// el upgrade de websocket del navegador no admite headers
		token = strings.TrimSpace(r.URL.Query().Get("access_token"))
	}
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// RequireClaims responde 401 si el request no está autenticado.
func RequireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return auth.Claims{}, false
	}
	return claims, true
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
