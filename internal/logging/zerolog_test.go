package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZerolog_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "warn", false)

	logger.Info().Msg("hidden")
	logger.Warn().Str("table", "fixtures").Msg("slow insert")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slow insert", entry["message"])
	assert.Equal(t, "fixtures", entry["table"])
	assert.Contains(t, entry, "time")
}

func TestNewZerolog_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "debug", true)
	logger.Debug().Msg("connected")

	assert.Contains(t, buf.String(), "connected")
	assert.Contains(t, buf.String(), "DBG")
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, zerologLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, zerologLevel("ERROR"))
	assert.Equal(t, zerolog.InfoLevel, zerologLevel("bogus"))
}
