package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/config"
	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/server/authctx"
	"github.com/BST1120/mapper2/internal/service"
	"github.com/BST1120/mapper2/internal/store"
	"github.com/BST1120/mapper2/internal/store/memory"
)

func sessionFixture(t *testing.T) (service.SessionService, string) {
	t.Helper()
	st := memory.New()
	hash, err := service.HashPIN("4242")
	require.NoError(t, err)
	doc, err := store.DataFrom(domain.Tenant{Name: "園A", EditPINHash: hash})
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), store.TenantPath("t1"), doc, false))

	svc := service.SessionService{
		Config: config.Config{JWTSecret: "secret", EditSessionTTL: time.Hour},
		Store:  st,
	}
	res, err := svc.Login(context.Background(), "t1", "4242")
	require.NoError(t, err)
	return svc, res.Token
}

func protectedRouter(svc service.SessionService) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(EditSessionMiddleware(svc))
		pr.Post("/tenants/{tenant}/ping", func(w http.ResponseWriter, r *http.Request) {
			s := authctx.FromContext(r.Context())
			w.Header().Set("X-Session-Tenant", s.TenantID)
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestEditSessionMiddlewareAllowsValidToken(t *testing.T) {
	svc, token := sessionFixture(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tenants/t1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", rec.Header().Get("X-Session-Tenant"))
}

func TestEditSessionMiddlewareRejectsMissingToken(t *testing.T) {
	svc, _ := sessionFixture(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tenants/t1/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEditSessionMiddlewareRejectsBadToken(t *testing.T) {
	svc, _ := sessionFixture(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tenants/t1/ping", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEditSessionMiddlewareRejectsOtherTenant(t *testing.T) {
	svc, token := sessionFixture(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tenants/t2/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
