package migrations_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/domain/inventory"
	"github.com/jhoicas/billar-api/migrations"
)

func TestLoad_TenantIncluyeIndicesDeUnicidad(t *testing.T) {
	list, err := migrations.Load(migrations.Tenant)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "tenant/0001_init.sql", list[0].Version)
	assert.True(t, strings.Contains(list[0].SQL, "rentals_one_open_per_table"))
	assert.True(t, strings.Contains(list[0].SQL, "cash_sessions_one_open_per_user"))
	assert.True(t, strings.Contains(list[0].SQL, "UNIQUE (type, series, number)"))
}

func TestLoad_Catalog(t *testing.T) {
	list, err := migrations.Load(migrations.Catalog)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].SQL, "CREATE TABLE IF NOT EXISTS tenants")
}

// Las columnas de costo deben guardar la misma escala que calcula el kardex.
func TestLoad_TenantEscalaDeCostos(t *testing.T) {
	list, err := migrations.Load(migrations.Tenant)
	require.NoError(t, err)
	sql := list[0].SQL

	for _, col := range []string{"default_cost", "avg_unit_cost", "unit_cost", "balance_avg_unit_cost"} {
		re := regexp.MustCompile(`(?m)^\s*` + col + `\s+NUMERIC\(\d+,\s*(\d+)\)`)
		m := re.FindAllStringSubmatch(sql, -1)
		require.NotEmpty(t, m, col)
		for _, g := range m {
			assert.Equal(t, fmt.Sprint(inventory.CostPrecision), g[1], col)
		}
	}
}
