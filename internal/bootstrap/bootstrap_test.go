package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
	"github.com/BST1120/mapper2/internal/store/memory"
)

func TestEnsureTenantSeedsDefaults(t *testing.T) {
	st := memory.New()
	b := New(st)
	ctx := context.Background()

	created, err := b.EnsureTenant(ctx, TenantInput{TenantID: "t1", Name: "園A", MinStaffThreshold: 3})
	require.NoError(t, err)
	assert.True(t, created)

	doc, err := st.Get(ctx, store.TenantPath("t1"))
	require.NoError(t, err)
	var tenant domain.Tenant
	require.NoError(t, store.DataTo(doc, &tenant))
	assert.Equal(t, "園A", tenant.Name)
	assert.Equal(t, "Asia/Tokyo", tenant.Timezone)
	assert.Equal(t, 3, tenant.MinStaffThreshold)

	areas, err := st.GetAll(ctx, store.AreasCollection("t1"))
	require.NoError(t, err)
	assert.Len(t, areas, len(DefaultAreas))

	// The reserved buckets must exist.
	for _, id := range []string{domain.AreaIDFree, domain.AreaIDBreak, domain.AreaIDOffice} {
		_, err := st.Get(ctx, store.AreaPath("t1", id))
		assert.NoErrorf(t, err, "area %s", id)
	}

	types, err := st.GetAll(ctx, store.ShiftTypesCollection("t1"))
	require.NoError(t, err)
	assert.Len(t, types, len(DefaultShiftTypes))
}

func TestEnsureTenantUsesConfiguredDefaultTimezone(t *testing.T) {
	st := memory.New()
	b := New(st)
	b.DefaultTimezone = "America/New_York"
	ctx := context.Background()

	_, err := b.EnsureTenant(ctx, TenantInput{TenantID: "t1", Name: "園A"})
	require.NoError(t, err)

	doc, err := st.Get(ctx, store.TenantPath("t1"))
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", doc["timezone"])

	// An explicit timezone still wins.
	_, err = b.EnsureTenant(ctx, TenantInput{TenantID: "t2", Name: "園B", Timezone: "UTC"})
	require.NoError(t, err)
	doc, err = st.Get(ctx, store.TenantPath("t2"))
	require.NoError(t, err)
	assert.Equal(t, "UTC", doc["timezone"])
}

func TestEnsureTenantIsIdempotent(t *testing.T) {
	st := memory.New()
	b := New(st)
	ctx := context.Background()

	created, err := b.EnsureTenant(ctx, TenantInput{TenantID: "t1", Name: "園A"})
	require.NoError(t, err)
	assert.True(t, created)

	// Second call must not overwrite anything.
	created, err = b.EnsureTenant(ctx, TenantInput{TenantID: "t1", Name: "別名"})
	require.NoError(t, err)
	assert.False(t, created)

	doc, err := st.Get(ctx, store.TenantPath("t1"))
	require.NoError(t, err)
	assert.Equal(t, "園A", doc["name"])
}

func TestEnsureTenantRequiresID(t *testing.T) {
	b := New(memory.New())
	_, err := b.EnsureTenant(context.Background(), TenantInput{})
	assert.Error(t, err)
}

func TestSeedSampleStaff(t *testing.T) {
	st := memory.New()
	b := New(st)
	ctx := context.Background()
	const date = "2026-08-29"

	_, err := b.EnsureTenant(ctx, TenantInput{TenantID: "t1", Name: "園A"})
	require.NoError(t, err)

	count, err := b.SeedSampleStaff(ctx, "t1", date, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	staff, err := st.GetAll(ctx, store.StaffCollection("t1"))
	require.NoError(t, err)
	assert.Len(t, staff, 4)

	doc, err := st.Get(ctx, store.AssignmentPath("t1", date, "sato_t"))
	require.NoError(t, err)
	var a domain.Assignment
	require.NoError(t, store.DataTo(doc, &a))
	assert.Equal(t, domain.AreaIDFree, a.AreaID)
	assert.Equal(t, int64(1), a.Version)

	doc, err = st.Get(ctx, store.ShiftPath("t1", date, "sato_t"))
	require.NoError(t, err)
	var sh domain.Shift
	require.NoError(t, store.DataTo(doc, &sh))
	assert.Equal(t, "C", sh.ShiftCode)
	assert.Equal(t, 8, sh.StartAt.Hour())
	assert.Equal(t, 17, sh.EndAt.Hour())
	assert.Equal(t, domain.ShiftSourceSeed, sh.Source)
	assert.Equal(t, 2, sh.RemainingBreaks())
}

func TestShiftTypesByCode(t *testing.T) {
	types := ShiftTypesByCode()
	assert.Len(t, types, len(DefaultShiftTypes))
	c, ok := types["C"]
	require.True(t, ok)
	assert.Equal(t, "08:00", c.Start)
	assert.Equal(t, "17:00", c.End)
}
