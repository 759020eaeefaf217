// Package logging bridges zap loggers inside a guest module to the
// host logger. Entries are serialized with their fields and replayed
// host-side at the original level, so guest code logs exactly like
// host code does.
package logging

import (
	"encoding/json"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	internal "github.com/alixinne/omw/guest/internal/imports"
	"github.com/alixinne/omw/guest/internal/mem"
)

var rawLogWrite = func(b []byte) {
	ptr, size := mem.BytesToPtr(b)
	internal.LogWrite(ptr, size)
	runtime.KeepAlive(b)
}

// NewLogger returns a zap logger whose entries cross the module
// boundary through the log_write host call.
func NewLogger() *zap.Logger {
	return zap.New(&hostCore{})
}

// Wire form of one entry, mirroring the host-side decoder.
type entryCaller struct {
	Defined  bool    `json:"defined"`
	PC       uintptr `json:"pc"`
	File     string  `json:"file"`
	Line     int     `json:"line"`
	Function string  `json:"function"`
}

type entry struct {
	Level      int8        `json:"level"`
	Time       time.Time   `json:"time"`
	LoggerName string      `json:"logger_name"`
	Message    string      `json:"message"`
	Caller     entryCaller `json:"caller"`
	Stack      string      `json:"stack"`
}

type field struct {
	Key     string
	Type    uint8
	Integer int64
	String  string
}

type payload struct {
	Entry  entry   `json:"entry"`
	Fields []field `json:"fields"`
}

// hostCore forwards every entry to the host. Level filtering is left
// to the host logger, which knows the deployment's verbosity.
type hostCore struct {
	with []zapcore.Field
}

func (c *hostCore) Enabled(zapcore.Level) bool { return true }

func (c *hostCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &hostCore{with: make([]zapcore.Field, 0, len(c.with)+len(fields))}
	clone.with = append(clone.with, c.with...)
	clone.with = append(clone.with, fields...)
	return clone
}

func (c *hostCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}

func (c *hostCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	p := payload{
		Entry: entry{
			Level:      int8(e.Level),
			Time:       e.Time,
			LoggerName: e.LoggerName,
			Message:    e.Message,
			Caller: entryCaller{
				Defined:  e.Caller.Defined,
				PC:       e.Caller.PC,
				File:     e.Caller.File,
				Line:     e.Caller.Line,
				Function: e.Caller.Function,
			},
			Stack: e.Stack,
		},
	}
	p.Fields = appendFields(p.Fields, c.with)
	p.Fields = appendFields(p.Fields, fields)

	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	rawLogWrite(b)
	return nil
}

func (c *hostCore) Sync() error { return nil }

// appendFields narrows zap fields to the wire form. Only the scalar
// payload carriers survive the crossing; Interface-typed fields lose
// their value but keep their key.
func appendFields(dst []field, src []zapcore.Field) []field {
	for _, f := range src {
		dst = append(dst, field{
			Key:     f.Key,
			Type:    uint8(f.Type),
			Integer: f.Integer,
			String:  f.String,
		})
	}
	return dst
}
