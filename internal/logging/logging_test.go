package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFallback(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewWithOutput(&bytes.Buffer{}, "debug", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "loud", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "", "").GetLevel())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", "JSON")
	log.WithField("column", "amount").Info("profiled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "profiled", entry["msg"])
	assert.Equal(t, "amount", entry["column"])
}

func TestTextFormatSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=warning")
}
