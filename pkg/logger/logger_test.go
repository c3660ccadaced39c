package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_EmitsTypedFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug").With("timeline")

	l.Info("computed",
		String("policy", "bearish-first"),
		Int("events", 3),
		Float64("orb", 2.5),
		Bool("cancelled", false),
		Duration("duration_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "computed", got["message"])
	assert.Equal(t, "timeline", got["component"])
	assert.Equal(t, "bearish-first", got["policy"])
	assert.EqualValues(t, 3, got["events"])
	assert.EqualValues(t, 2.5, got["orb"])
	assert.Equal(t, false, got["cancelled"])
	assert.EqualValues(t, 1500, got["duration_ms"])
	assert.Equal(t, "boom", got["error"])
}

func TestNewWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")
	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", String("k", "v")) })
}
