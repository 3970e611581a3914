package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, Options{Level: "debug", Service: "goaltext"})

	logger.Debug("hello", "phone", "+16502530000")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "goaltext", line["service"])
	assert.Equal(t, "hello", line["msg"])
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, Options{Level: "loud"})

	logger.Debug("dropped")
	assert.Zero(t, buf.Len())

	logger.Info("kept")
	assert.NotZero(t, buf.Len())
}
