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
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestConfigureAddsService(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Configure(Config{Pretty: true}) })

	Configure(Config{Level: "info", Output: &buf, Service: "acesped-portal"})
	Info().Str("applicationNumber", "ACE-2025-0001").Msg("submitted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "acesped-portal", entry["service"])
	assert.Equal(t, "ACE-2025-0001", entry["applicationNumber"])
	assert.Equal(t, "info", entry["level"])
}
