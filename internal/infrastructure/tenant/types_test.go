package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	s, err := NormalizeSlug("  Club-Sol ")
	require.NoError(t, err)
	assert.Equal(t, "club-sol", s)

	for _, bad := range []string{"", "-x", "club sol", "club_sol", "../etc"} {
		_, err := NormalizeSlug(bad)
		assert.ErrorIs(t, err, ErrInvalidSlug, bad)
	}
}

func TestSlugFromHost(t *testing.T) {
	cases := []struct {
		host, base, want string
	}{
		{"club-sol.billar.app", "billar.app", "club-sol"},
		{"CLUB-SOL.billar.app:8080", "billar.app", "club-sol"},
		{"billar.app", "billar.app", ""},
		{"a.b.billar.app", "billar.app", ""},
		{"club-sol.otro.com", "billar.app", ""},
		{"club-sol.billar.app", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SlugFromHost(tc.host, tc.base), tc.host)
	}
}

func TestContext_TenantYPool(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTenant(ctx))
	assert.Equal(t, "", GetSlug(ctx))
	_, err := ContextPools{}.Pool(ctx)
	assert.ErrorIs(t, err, ErrNoPoolInContext)

	ctx = WithTenant(ctx, &Tenant{Slug: "club-sol"})
	assert.Equal(t, "club-sol", GetSlug(ctx))
}
