package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONIncludesAppField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger("ttw", "debug", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug().Str("topic", "abc@2").Msg("restored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ttw", entry["app"])
	assert.Equal(t, "abc@2", entry["topic"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger("ttw", "warn", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestNewLoggerRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "level", level: "loud", format: FormatJSON},
		{name: "format", level: "info", format: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewLogger("ttw", tt.level, tt.format, &bytes.Buffer{})
			require.Error(t, err)
		})
	}
}
