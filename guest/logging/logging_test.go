package logging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func capturePayloads(t *testing.T) *[][]byte {
	t.Helper()
	prev := rawLogWrite
	t.Cleanup(func() { rawLogWrite = prev })

	var got [][]byte
	rawLogWrite = func(b []byte) { got = append(got, b) }
	return &got
}

func TestBridgeSerializesEntryAndFields(t *testing.T) {
	got := capturePayloads(t)

	log := NewLogger().Named("guest")
	log.Warn("threshold exceeded", zap.Int64("value", 12), zap.String("unit", "ms"))

	require.Len(t, *got, 1)
	var p payload
	require.NoError(t, json.Unmarshal((*got)[0], &p))

	assert.Equal(t, int8(zapcore.WarnLevel), p.Entry.Level)
	assert.Equal(t, "guest", p.Entry.LoggerName)
	assert.Equal(t, "threshold exceeded", p.Entry.Message)

	require.Len(t, p.Fields, 2)
	assert.Equal(t, field{Key: "value", Type: uint8(zapcore.Int64Type), Integer: 12}, p.Fields[0])
	assert.Equal(t, field{Key: "unit", Type: uint8(zapcore.StringType), String: "ms"}, p.Fields[1])
}

func TestBridgeCarriesWithFieldsBeforeSiteFields(t *testing.T) {
	got := capturePayloads(t)

	log := NewLogger().With(zap.String("component", "arith"))
	log.Info("ready", zap.Int64("handlers", 3))

	require.Len(t, *got, 1)
	var p payload
	require.NoError(t, json.Unmarshal((*got)[0], &p))

	require.Len(t, p.Fields, 2)
	assert.Equal(t, "component", p.Fields[0].Key)
	assert.Equal(t, "handlers", p.Fields[1].Key)
}

func TestBridgeWithDoesNotMutateParent(t *testing.T) {
	got := capturePayloads(t)

	parent := NewLogger()
	parent.With(zap.String("scoped", "child")).Info("child entry")
	parent.Info("parent entry")

	require.Len(t, *got, 2)
	var p payload
	require.NoError(t, json.Unmarshal((*got)[1], &p))
	assert.Empty(t, p.Fields)
}

// The wire form must stay decodable by the host-side replay structs,
// which key on these exact JSON names.
func TestWireFieldNames(t *testing.T) {
	got := capturePayloads(t)

	NewLogger().Error("boom")

	require.Len(t, *got, 1)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal((*got)[0], &raw))
	assert.Contains(t, raw, "entry")
	assert.Contains(t, raw, "fields")

	var e map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["entry"], &e))
	for _, key := range []string{"level", "time", "logger_name", "message", "caller", "stack"} {
		assert.Contains(t, e, key)
	}
}
