package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Initialize(Config{Level: "info", Format: "json", Output: &bytes.Buffer{}}) })

	WithContext(map[string]interface{}{"wizard_session": "s-1"}).
		Error("Store registration request failed", errors.New("boom"), map[string]interface{}{"attempt": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "Store registration request failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "s-1", entry["wizard_session"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { Initialize(Config{Level: "info", Format: "json", Output: &bytes.Buffer{}}) })

	Info("hidden")
	Debug("hidden")
	assert.Empty(t, buf.String())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("verbose"))
}
