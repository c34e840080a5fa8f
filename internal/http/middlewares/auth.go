package middlewares

import (
	"net/http"

	"github.com/fitpulse/identity/internal/auth"
	httpx "github.com/fitpulse/identity/internal/http"
)

// RequireAuth valida Authorization: Bearer <JWT> contra el servicio de auth y
// guarda el usuario (sanitizado) en el contexto. Si el token es inválido, el
// usuario ya no existe o falta el header, responde 401.
func RequireAuth(svc *auth.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := svc.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httpx.WriteDomainError(w, err)
				return
			}

			ctx := setUser(r.Context(), u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
