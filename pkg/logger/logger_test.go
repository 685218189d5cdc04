package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestComponent_CamposFijos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{App: "evraklab", Env: "production", Level: "info", Out: &buf})

	docs := l.Component("documents")
	docs.Info().Str("document_id", "d-1").Msg("documento creado")
	docsDebug := l.Component("documents")
	docsDebug.Debug().Msg("no se escribe")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "evraklab", line["app"])
	assert.Equal(t, "documents", line["component"])
	assert.Equal(t, "d-1", line["document_id"])
	assert.Equal(t, "info", line["level"])
}
