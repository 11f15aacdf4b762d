package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf}).Named("inventory")

	log.Debug().Msg("no debe salir")
	log.Warn().Str("product_id", "p-1").Msg("stock bajo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "una sola línea JSON: %s", buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "inventory", entry["component"])
	assert.Equal(t, "p-1", entry["product_id"])
	assert.Equal(t, "stock bajo", entry["message"])
}

func TestNew_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "verbose", Out: &buf})

	log.Debug().Msg("oculto")
	assert.Empty(t, buf.String())
	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nada") })
}
