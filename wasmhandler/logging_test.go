package wasmhandler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGuestLogReplay(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(LogPayload{
		Entry: Entry{
			Level:      Level(zapcore.WarnLevel),
			Time:       stamp,
			LoggerName: "guest",
			Message:    "threshold exceeded",
		},
		Fields: Fields{
			{Key: "value", Type: FieldType(zapcore.Int64Type), Integer: 12},
			{Key: "unit", Type: FieldType(zapcore.StringType), String: "ms"},
		},
	})
	require.NoError(t, err)

	sp := newSegmentPlan()
	fns := functionsBody(sp, "noisy")
	off, size := sp.add(payload)

	p := newTestPlugin(t, buildGuestModule(guestModule{
		invokeBody: guestBody(
			hostCall(importLogWrite, off, size),
			i32Const(0),
		),
		functionsBody: fns,
		data:          sp.segs,
	}), nil, log)

	_, err = invokeThroughWrapper(t, p, "noisy", nil)
	require.NoError(t, err)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "threshold exceeded", entries[0].Message)
	assert.Equal(t, "guest", entries[0].LoggerName)
	assert.Equal(t, stamp, entries[0].Time)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(12), fields["value"])
	assert.Equal(t, "ms", fields["unit"])
}

func TestGuestLogReplayIgnoresMalformedPayload(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	sp := newSegmentPlan()
	fns := functionsBody(sp, "broken")
	off, size := sp.add([]byte("not json"))

	p := newTestPlugin(t, buildGuestModule(guestModule{
		invokeBody: guestBody(
			hostCall(importLogWrite, off, size),
			i32Const(0),
		),
		functionsBody: fns,
		data:          sp.segs,
	}), nil, log)

	_, err := invokeThroughWrapper(t, p, "broken", nil)
	require.NoError(t, err)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "malformed guest log entry")
}

func TestFieldsZapCoreFields(t *testing.T) {
	fields := Fields{
		{Key: "count", Type: FieldType(zapcore.Int64Type), Integer: 3},
		{Key: "label", Type: FieldType(zapcore.StringType), String: "ok"},
	}

	converted := fields.ZapCoreFields()
	require.Len(t, converted, 2)
	assert.Equal(t, zap.Int64("count", 3), converted[0])
	assert.Equal(t, zap.String("label", "ok"), converted[1])
}
