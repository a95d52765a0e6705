package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "billar-api", Output: &buf})

	l.Component("settlement").Tenant("club-sol").Info().Str("document", "NV01-00000001").Msg("mesa liquidada")
	l.Debug().Msg("no se escribe")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "billar-api", entry["service"])
	assert.Equal(t, "settlement", entry["component"])
	assert.Equal(t, "club-sol", entry["tenant"])
	assert.Equal(t, "NV01-00000001", entry["document"])
	assert.Equal(t, "info", entry["level"])
}
