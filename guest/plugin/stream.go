package plugin

import (
	"errors"
	"fmt"
	"runtime"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/codec"
	"github.com/alixinne/omw/guest/internal/imports"
	"github.com/alixinne/omw/guest/internal/mem"
)

// valueBuf is the scratch buffer parameter values arrive in. It grows
// to the largest value seen.
var valueBuf = make([]byte, 2048)

// The host calls, indirected so tests can run without a host.
var (
	rawParamRead      = callParamRead
	rawParamCheck     = callParamCheck
	rawParamAbsent    = callParamAbsent
	rawParamEnter     = callParamEnter
	rawParamLeave     = callParamLeave
	rawParamSeq       = callParamSeq
	rawResultWrite    = callResultWrite
	rawCallFail       = callCallFail
	rawCallError      = callCallError
	rawFunctionsWrite = callFunctionsWrite
)

func callParamRead(kind omw.Kind, idx int, name string, data bool) ([]byte, uint32) {
	namePtr, nameLen := mem.StringToPtr(name)
	dataFlag := uint32(0)
	if data {
		dataFlag = 1
	}
	for {
		bufPtr, bufLimit := mem.BytesToPtr(valueBuf)
		res := imports.ParamRead(uint32(kind), uint32(idx), dataFlag, namePtr, nameLen, bufPtr, bufLimit)
		runtime.KeepAlive(name)
		runtime.KeepAlive(valueBuf)

		status, payload := imports.Unpack(res)
		if status == imports.StatusGrow {
			valueBuf = make([]byte, payload)
			continue
		}
		if status == imports.StatusOK && data {
			out := make([]byte, payload)
			copy(out, valueBuf[:payload])
			return out, status
		}
		return nil, status
	}
}

func callParamCheck(idx int, name string) uint32 {
	namePtr, nameLen := mem.StringToPtr(name)
	res := imports.ParamCheck(uint32(idx), namePtr, nameLen)
	runtime.KeepAlive(name)
	status, _ := imports.Unpack(res)
	return status
}

func callParamAbsent(idx int, name string) (status, payload uint32) {
	namePtr, nameLen := mem.StringToPtr(name)
	res := imports.ParamAbsent(uint32(idx), namePtr, nameLen)
	runtime.KeepAlive(name)
	return imports.Unpack(res)
}

func callParamEnter(idx int, name string, arity int) uint32 {
	namePtr, nameLen := mem.StringToPtr(name)
	res := imports.ParamEnter(uint32(idx), namePtr, nameLen, uint32(arity))
	runtime.KeepAlive(name)
	status, _ := imports.Unpack(res)
	return status
}

func callParamLeave(idx int) {
	imports.ParamLeave(uint32(idx))
}

func callParamSeq(firstIdx, arity int) (status, payload uint32) {
	return imports.Unpack(imports.ParamSeq(uint32(firstIdx), uint32(arity)))
}

func callResultWrite(enc []byte) {
	ptr, size := mem.BytesToPtr(enc)
	imports.ResultWrite(ptr, size)
	runtime.KeepAlive(enc)
}

func callCallFail(reason string) {
	ptr, size := mem.StringToPtr(reason)
	imports.CallFail(ptr, size)
	runtime.KeepAlive(reason) // until ptr is no longer needed.
}

func callCallError() []byte {
	return mem.GetBytes(func(ptr uint32, limit mem.BufLimit) uint32 {
		return imports.CallError(ptr, limit)
	})
}

func callFunctionsWrite(enc []byte) {
	ptr, size := mem.BytesToPtr(enc)
	imports.FunctionsWrite(ptr, size)
	runtime.KeepAlive(enc)
}

// hostError fetches the text behind the latest StatusFailed.
func hostError() error {
	raw := rawCallError()
	if len(raw) == 0 {
		return errors.New("host call failed")
	}
	return errors.New(string(raw))
}

// hostStream adapts the host parameter calls to the reading engine.
type hostStream struct{}

var _ omw.Stream = hostStream{}

func (hostStream) CheckIndex(idx int, name string) error {
	if rawParamCheck(idx, name) == imports.StatusFailed {
		return hostError()
	}
	return nil
}

func (hostStream) TryRead(kind omw.Kind, idx int, name string, data bool) (omw.Value, bool, error) {
	enc, status := rawParamRead(kind, idx, name, data)
	switch status {
	case imports.StatusMismatch:
		return omw.Value{}, false, nil
	case imports.StatusFailed:
		return omw.Value{}, false, hostError()
	}
	if !data {
		return omw.Value{}, true, nil
	}
	v, _, err := codec.DecodeValue(enc)
	if err != nil {
		return omw.Value{}, false, fmt.Errorf("invalid value encoding from host: %w", err)
	}
	return v, true, nil
}

func (hostStream) TryAbsent(idx int, name string) (bool, error) {
	status, payload := rawParamAbsent(idx, name)
	if status == imports.StatusFailed {
		return false, hostError()
	}
	return payload != 0, nil
}

func (hostStream) EnterTuple(idx int, name string, arity int) error {
	if rawParamEnter(idx, name, arity) == imports.StatusFailed {
		return hostError()
	}
	return nil
}

func (hostStream) LeaveTuple(idx int) {
	rawParamLeave(idx)
}

func (hostStream) BeginTupleList(firstIdx int, arity int) (int, error) {
	status, payload := rawParamSeq(firstIdx, arity)
	if status == imports.StatusFailed {
		return 0, hostError()
	}
	return int(payload), nil
}
