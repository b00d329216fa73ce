package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogToWriter(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, closer, err := New().ToWriter(buff).Level("info").Make()
	require.NoError(t, err)
	defer closer()

	require.Equal(t, 0, buff.Len())
	log.Debug().Msg("hidden")
	require.Equal(t, 0, buff.Len())
	log.Info().Str("db", "notes").Msg("Test")
	require.Contains(t, buff.String(), `"message":"Test"`)
	require.Contains(t, buff.String(), `"db":"notes"`)
}

func TestUnknownLevelKeepsDefault(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, _, err := New().ToWriter(buff).Level("chatty").Make()
	require.NoError(t, err)

	log.Info().Msg("below warn")
	require.Equal(t, 0, buff.Len())
	log.Warn().Msg("warned")
	require.Contains(t, buff.String(), "warned")
}

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minderal.log")
	log, closer, err := New().ToFile(path).Make()
	require.NoError(t, err)

	log.Error().Msg("to file")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}

func TestPrettyOutput(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, _, err := New().ToWriter(buff).Pretty(true).Make()
	require.NoError(t, err)

	log.Warn().Msg("readable")
	require.Contains(t, buff.String(), "readable")
	require.NotContains(t, buff.String(), `"message"`)
}
