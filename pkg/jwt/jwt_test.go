package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_Identidad(t *testing.T) {
	in := Identity{UserID: "u1", WarehouseID: "w1", Role: "cajero", Tenant: "demo"}
	tok, err := Generate("secreto", "billar-api", 5, in)
	require.NoError(t, err)

	out, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", "billar-api", 5, Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", "billar-api", -1, Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "x", 5, Identity{UserID: "u1"})
	assert.Error(t, err)
}
