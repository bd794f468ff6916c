package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/server/authctx"
	"github.com/BST1120/mapper2/internal/service"
)

// EditSessionMiddleware gates mutations behind a valid edit-session token
// scoped to the tenant in the URL. The optional X-Identity-Token header adds
// a device uid to the session for audit attribution.
func EditSessionMiddleware(svc service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tenantID, err := svc.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if urlTenant := chi.URLParam(r, "tenant"); urlTenant != "" && urlTenant != tenantID {
				writeAuthError(w, http.StatusForbidden, "token is for another tenant")
				return
			}

			uid, err := svc.VerifyIdentity(r.Context(), r.Header.Get("X-Identity-Token"))
			if err != nil {
				// Identity is attribution only; a bad token downgrades to anonymous.
				uid = ""
			}
			ctx := authctx.WithSession(r.Context(), authctx.Session{TenantID: tenantID, UID: uid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + http.StatusText(status) + `","message":"` + message + `"}`))
}
