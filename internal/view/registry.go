package view

import (
	"log/slog"
	"sync"

	"github.com/BST1120/mapper2/internal/store"
)

// Registry hands out one Views instance per tenant, created lazily on first
// use. OnChange is installed on every instance it creates.
type Registry struct {
	Store    store.Store
	Logger   *slog.Logger
	OnChange func(tenantID, scope, date string)

	mu      sync.Mutex
	tenants map[string]*Views
}

func NewRegistry(st store.Store, logger *slog.Logger) *Registry {
	return &Registry{Store: st, Logger: logger, tenants: map[string]*Views{}}
}

func (r *Registry) Tenant(tenantID string) (*Views, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.tenants[tenantID]; ok {
		return v, nil
	}
	v, err := New(r.Store, r.Logger, tenantID)
	if err != nil {
		return nil, err
	}
	if r.OnChange != nil {
		onChange := r.OnChange
		v.OnChange = func(scope, date string) {
			onChange(tenantID, scope, date)
		}
	}
	r.tenants[tenantID] = v
	return v, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	tenants := r.tenants
	r.tenants = map[string]*Views{}
	r.mu.Unlock()
	for _, v := range tenants {
		v.Close()
	}
}
