package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestWithWriter_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.WithWriter(&buf, "warn")

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Named("ledger").Warn().Str("item_id", "i-1").Msg("conflicto")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "i-1", line["item_id"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("descartado") })
}

func TestParseLevel_DesconocidoEsInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verboso"))
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" DEBUG "))
}
