package wasmhandler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/codec"
)

// stackKey is the key used to store the stack in the context
type stackKey struct{}

// Stack holds the data being passed between the host and the guest
// during one call.
type Stack struct {
	// Call is the invocation frame the guest reads parameters from and
	// writes results to.
	Call *omw.Call

	// ConfigJSON is the plugin config in JSON representation passed to
	// the guest
	ConfigJSON []byte

	// Logger receives the log entries the guest emits through
	// log_write.
	Logger *zap.Logger

	// Failure is the error the guest reported through call_fail.
	Failure error

	// Functions collects the names the guest pushes through
	// functions_write.
	Functions []string

	// lastErr is the stream error behind the latest callFailed status,
	// fetched by the guest through call_error.
	lastErr error

	// pending holds an encoded value that did not fit the guest buffer.
	// The guest retries the same read with a larger buffer and the host
	// serves it from here instead of consuming a second time.
	pending     []byte
	pendingKind omw.Kind
	pendingIdx  int
}

// paramsFromContext retrieves the Stack from the context
func paramsFromContext(ctx context.Context) *Stack {
	return ctx.Value(stackKey{}).(*Stack)
}

// createContextWithStack creates a new context with a Stack
func createContextWithStack(ctx context.Context, stack *Stack) context.Context {
	return context.WithValue(ctx, stackKey{}, stack)
}

func (s *Stack) takePending(kind omw.Kind, idx int) ([]byte, bool) {
	if s.pending != nil && s.pendingKind == kind && s.pendingIdx == idx {
		return s.pending, true
	}
	// A read of a different parameter abandons the retry.
	s.pending = nil
	return nil, false
}

// deliver writes enc to the guest buffer, or stashes it and asks for a
// larger one.
func (s *Stack) deliver(memory api.Memory, enc []byte, buf, bufLimit uint32, kind omw.Kind, idx int) uint64 {
	if uint32(len(enc)) > bufLimit {
		s.pending, s.pendingKind, s.pendingIdx = enc, kind, idx
		return packResult(callGrow, uint32(len(enc)))
	}
	if !memory.Write(buf, enc) {
		panic("out of memory writing parameter value") // Bug: caller passed a buffer outside memory
	}
	s.pending = nil
	return packResult(callOK, uint32(len(enc)))
}

func readGuestString(memory api.Memory, ptr, size uint32) string {
	if size == 0 {
		return ""
	}
	bytes, ok := memory.Read(ptr, size)
	if !ok {
		panic("out of memory reading parameter name") // Bug: caller passed a length outside memory
	}
	return string(bytes)
}

// Host function implementations

func paramReadFn(ctx context.Context, mod api.Module, stack []uint64) {
	kind := omw.Kind(stack[0])
	idx := int(int32(stack[1]))
	data := uint32(stack[2]) != 0
	name := readGuestString(mod.Memory(), uint32(stack[3]), uint32(stack[4]))
	buf := uint32(stack[5])
	bufLimit := uint32(stack[6])

	s := paramsFromContext(ctx)
	if enc, ok := s.takePending(kind, idx); ok {
		stack[0] = s.deliver(mod.Memory(), enc, buf, bufLimit, kind, idx)
		return
	}

	v, ok, err := s.Call.Stream().TryRead(kind, idx, name, data)
	if err != nil {
		s.lastErr = err
		stack[0] = packResult(callFailed, 0)
		return
	}
	if !ok {
		stack[0] = packResult(callMismatch, 0)
		return
	}
	if !data {
		stack[0] = packResult(callOK, 0)
		return
	}
	stack[0] = s.deliver(mod.Memory(), codec.EncodeValue(v), buf, bufLimit, kind, idx)
}

func paramCheckFn(ctx context.Context, mod api.Module, stack []uint64) {
	idx := int(int32(stack[0]))
	name := readGuestString(mod.Memory(), uint32(stack[1]), uint32(stack[2]))

	s := paramsFromContext(ctx)
	if err := s.Call.Stream().CheckIndex(idx, name); err != nil {
		s.lastErr = err
		stack[0] = packResult(callFailed, 0)
		return
	}
	stack[0] = packResult(callOK, 0)
}

func paramAbsentFn(ctx context.Context, mod api.Module, stack []uint64) {
	idx := int(int32(stack[0]))
	name := readGuestString(mod.Memory(), uint32(stack[1]), uint32(stack[2]))

	s := paramsFromContext(ctx)
	absent, err := s.Call.Stream().TryAbsent(idx, name)
	if err != nil {
		s.lastErr = err
		stack[0] = packResult(callFailed, 0)
		return
	}
	if absent {
		stack[0] = packResult(callOK, 1)
	} else {
		stack[0] = packResult(callOK, 0)
	}
}

func paramEnterFn(ctx context.Context, mod api.Module, stack []uint64) {
	idx := int(int32(stack[0]))
	name := readGuestString(mod.Memory(), uint32(stack[1]), uint32(stack[2]))
	arity := int(int32(stack[3]))

	s := paramsFromContext(ctx)
	if err := s.Call.Stream().EnterTuple(idx, name, arity); err != nil {
		s.lastErr = err
		stack[0] = packResult(callFailed, 0)
		return
	}
	stack[0] = packResult(callOK, 0)
}

func paramLeaveFn(ctx context.Context, mod api.Module, stack []uint64) {
	idx := int(int32(stack[0]))
	paramsFromContext(ctx).Call.Stream().LeaveTuple(idx)
}

func paramSeqFn(ctx context.Context, mod api.Module, stack []uint64) {
	firstIdx := int(int32(stack[0]))
	arity := int(int32(stack[1]))

	s := paramsFromContext(ctx)
	n, err := s.Call.Stream().BeginTupleList(firstIdx, arity)
	if err != nil {
		s.lastErr = err
		stack[0] = packResult(callFailed, 0)
		return
	}
	stack[0] = packResult(callOK, uint32(n))
}

func callErrorFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	bufLimit := uint32(stack[1])

	var text []byte
	if err := paramsFromContext(ctx).lastErr; err != nil {
		text = []byte(err.Error())
	}
	stack[0] = uint64(writeBytesIfUnderLimit(mod.Memory(), text, buf, bufLimit))
}

func resultWriteFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])

	bytes, ok := mod.Memory().Read(buf, size)
	if !ok {
		panic("out of memory reading results") // Bug: caller passed a length outside memory
	}

	vs, err := codec.DecodeValues(bytes)
	if err != nil {
		panic(err) // Bug: guest sent an invalid encoding
	}

	s := paramsFromContext(ctx)
	for _, v := range vs {
		// One Write per value keeps separately written results
		// separate on the host sink.
		if err := s.Call.Write(v); err != nil {
			s.lastErr = err
			return
		}
	}
}

func callFailFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])

	bytes, ok := mod.Memory().Read(buf, size)
	if !ok {
		panic("out of memory reading failure message") // Bug: caller passed a length outside memory
	}

	paramsFromContext(ctx).Failure = errors.New(string(bytes))
}

func configReadFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	bufLimit := uint32(stack[1])

	config := paramsFromContext(ctx).ConfigJSON
	stack[0] = uint64(writeBytesIfUnderLimit(mod.Memory(), config, buf, bufLimit))
}

func functionsWriteFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])

	bytes, ok := mod.Memory().Read(buf, size)
	if !ok {
		panic("out of memory reading function names") // Bug: caller passed a length outside memory
	}

	names, err := codec.DecodeStrings(bytes)
	if err != nil {
		panic(err) // Bug: guest sent an invalid encoding
	}

	paramsFromContext(ctx).Functions = names
}

func logWriteFn(ctx context.Context, mod api.Module, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])

	bytes, ok := mod.Memory().Read(buf, size)
	if !ok {
		panic("out of memory reading log entry") // Bug: caller passed a length outside memory
	}

	s := paramsFromContext(ctx)
	if s.Logger == nil {
		return
	}

	var payload LogPayload
	if err := json.Unmarshal(bytes, &payload); err != nil {
		s.Logger.Warn("discarding malformed guest log entry", zap.Error(err))
		return
	}
	replayLogEntry(s.Logger, payload)
}
