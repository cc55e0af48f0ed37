package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/pkg/logger"
)

func TestNew_AgregaCampoService(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{
		Env:     "production",
		Level:   "info",
		Service: "warehouse-pro",
		Writer:  &buf,
	})

	l.Info().Str("env", "production").Msg("iniciando")

	out := buf.String()
	require.NotEmpty(t, out, "debe escribirse una línea de log")
	assert.Contains(t, out, `"service":"warehouse-pro"`,
		"cada línea debe llevar el nombre del servicio")
	assert.Contains(t, out, `"message":"iniciando"`)
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{
		Env:    "production",
		Level:  "warn",
		Writer: &buf,
	})

	l.Info().Msg("no debe salir")
	assert.Empty(t, buf.String(), "info queda filtrado bajo nivel warn")

	l.Warn().Msg("sí debe salir")
	assert.Contains(t, buf.String(), "sí debe salir")
}

func TestNew_NivelDesconocidoCaeEnInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "verboso", Writer: &buf})

	l.Debug().Msg("filtrado")
	assert.Empty(t, buf.String(), "debug queda bajo el nivel por defecto info")

	l.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
