package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/config"
	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
	"github.com/BST1120/mapper2/internal/store/memory"
)

func newSessionService(t *testing.T, st store.Store) SessionService {
	t.Helper()
	return SessionService{
		Config: config.Config{JWTSecret: "test-secret", EditSessionTTL: time.Hour},
		Store:  st,
	}
}

func seedTenant(t *testing.T, st store.Store, pin string) {
	t.Helper()
	hash := ""
	if pin != "" {
		var err error
		hash, err = HashPIN(pin)
		require.NoError(t, err)
	}
	doc, err := store.DataFrom(domain.Tenant{Name: "園A", Timezone: "Asia/Tokyo", EditPINHash: hash})
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), store.TenantPath("t1"), doc, false))
}

func TestLoginAndVerify(t *testing.T) {
	st := memory.New()
	seedTenant(t, st, "4242")
	svc := newSessionService(t, st)

	res, err := svc.Login(context.Background(), "t1", "4242")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	tenantID, err := svc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "t1", tenantID)
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	st := memory.New()
	seedTenant(t, st, "4242")
	svc := newSessionService(t, st)

	_, err := svc.Login(context.Background(), "t1", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "missing", "4242")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledWithoutPIN(t *testing.T) {
	st := memory.New()
	seedTenant(t, st, "")
	svc := newSessionService(t, st)

	_, err := svc.Login(context.Background(), "t1", "anything")
	assert.ErrorIs(t, err, ErrSessionsDisabled)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	st := memory.New()
	seedTenant(t, st, "4242")
	svc := newSessionService(t, st)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret is rejected.
	res, err := svc.Login(context.Background(), "t1", "4242")
	require.NoError(t, err)
	other := svc
	other.Config.JWTSecret = "different"
	_, err = other.Verify(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSetPIN(t *testing.T) {
	st := memory.New()
	seedTenant(t, st, "4242")
	svc := newSessionService(t, st)
	ctx := context.Background()

	assert.Error(t, svc.SetPIN(ctx, "t1", "123"))
	require.NoError(t, svc.SetPIN(ctx, "t1", "9999"))

	_, err := svc.Login(ctx, "t1", "4242")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "t1", "9999")
	assert.NoError(t, err)
}

func TestVerifyIdentityWithoutFirebase(t *testing.T) {
	svc := newSessionService(t, memory.New())
	uid, err := svc.VerifyIdentity(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Empty(t, uid)
}
