package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(DefaultConfig(), &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible", zap.String("screen", "welcome"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, `"screen": "welcome"`)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "debug"
	log, err := NewWithWriter(cfg, &buf)
	require.NoError(t, err)

	log.Debug("state", zap.String("to", "shortcut"))
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "state", entry["msg"])
	assert.Equal(t, "shortcut", entry["to"])
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signin.log")
	cfg := DefaultConfig()
	cfg.File = path

	var buf bytes.Buffer
	log, err := NewWithWriter(cfg, &buf)
	require.NoError(t, err)

	log.Warn("login errored", zap.String("activity", ".MinuteMaidActivity"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, ".MinuteMaidActivity", entry["activity"])
	assert.Contains(t, buf.String(), "login errored")
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := New(cfg)
	assert.Error(t, err)
}
