package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "NV01", cfg.Billing.Series)
	assert.Equal(t, "PEN", cfg.Billing.Currency)
	assert.Equal(t, "X-Tenant", cfg.Tenant.Header)
	assert.Equal(t, 5*time.Second, cfg.Billing.LockTimeout)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("BILLING_SERIES", "NV02")
	t.Setenv("BILLING_LOCK_TIMEOUT", "2")
	t.Setenv("RATE_LIMIT_RPS", "7.5")
	t.Setenv("TENANT_POOL_IDLE_TIMEOUT", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "NV02", cfg.Billing.Series)
	assert.Equal(t, 2*time.Second, cfg.Billing.LockTimeout)
	assert.Equal(t, 7.5, cfg.RateLimit.RPS)
	assert.Equal(t, 10*time.Minute, cfg.Tenant.IdleTimeout)
}

func TestTenantDSN_EscapaPassword(t *testing.T) {
	c := TenantConfig{DBHost: "db", DBPort: 5432, DBUser: "app", DBPassword: "p@ss/w", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/billar_demo?sslmode=disable", c.DSN("billar_demo"))
}

func TestTenantDSNAt_ServidorDelCatalogo(t *testing.T) {
	c := TenantConfig{DBHost: "db", DBPort: 5432, DBUser: "app", DBPassword: "x", SSLMode: "require"}
	assert.Equal(t, "postgres://app:x@db-2:6432/club_sol?sslmode=require", c.DSNAt("db-2", 6432, "club_sol"))
	assert.Equal(t, c.DSN("club_sol"), c.DSNAt("", 0, "club_sol"))
}

func TestLoad_ForceIPv4(t *testing.T) {
	t.Setenv("DB_FORCE_IPV4", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, "es-PE", cfg.Billing.Locale)
}
