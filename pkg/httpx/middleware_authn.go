package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/chirpnet/chirp/pkg/jwtx"
	"github.com/chirpnet/chirp/pkg/slogx"
)

// AuthnMiddleware verifies the bearer access token and attaches its claims
// to the request context.
func AuthnMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				WriteMessage(w, http.StatusUnauthorized, "Access token is required")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := codec.Verify(raw, jwtx.KindAccess)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				WriteMessage(w, http.StatusUnauthorized, jwtx.Reason(err))
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerify rejects authenticated callers whose token's verify claim
// differs from want. It must run after AuthnMiddleware.
func RequireVerify(want string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Verify != want {
				WriteMessage(w, http.StatusForbidden, "User not verified")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
