package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "json", &buf)
	require.NoError(t, err)

	cl := WithComponent(l, "invoices")
	cl.Info().Str("invoice", "INV-00001").Msg("created")
	l.Debug().Msg("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "invoices", entry["component"])
	assert.Equal(t, "INV-00001", entry["invoice"])
	assert.Equal(t, "created", entry["message"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json", nil)
	assert.Error(t, err)
}
