// Package imports wraps the host functions the omw host module makes
// available to guest code.
package imports

// Statuses a parameter host call packs into the high half of its
// result. The low half carries the payload: encoded size for reads,
// element count for sequences, the absence flag for optional probes.
const (
	StatusOK uint32 = iota
	// StatusGrow asks for a retry with a buffer of at least payload
	// bytes. The host holds the value, so the retry does not consume
	// again.
	StatusGrow
	// StatusMismatch reports a typed read that did not match. Nothing
	// was consumed.
	StatusMismatch
	// StatusFailed reports a stream error whose text CallError
	// returns.
	StatusFailed
)

// Unpack splits a packed host call result into status and payload.
func Unpack(res uint64) (status, payload uint32) {
	return uint32(res >> 32), uint32(res)
}

func ParamRead(kind, idx, data, namePtr, nameLen, buf, bufLimit uint32) uint64 {
	return paramRead(kind, idx, data, namePtr, nameLen, buf, bufLimit)
}

func ParamCheck(idx, namePtr, nameLen uint32) uint64 {
	return paramCheck(idx, namePtr, nameLen)
}

func ParamAbsent(idx, namePtr, nameLen uint32) uint64 {
	return paramAbsent(idx, namePtr, nameLen)
}

func ParamEnter(idx, namePtr, nameLen, arity uint32) uint64 {
	return paramEnter(idx, namePtr, nameLen, arity)
}

func ParamLeave(idx uint32) {
	paramLeave(idx)
}

func ParamSeq(firstIdx, arity uint32) uint64 {
	return paramSeq(firstIdx, arity)
}

func ResultWrite(ptr, size uint32) {
	resultWrite(ptr, size)
}

func CallFail(ptr, size uint32) {
	callFail(ptr, size)
}

func CallError(ptr, limit uint32) uint32 {
	return callError(ptr, limit)
}

func ConfigRead(ptr, limit uint32) uint32 {
	return configRead(ptr, limit)
}

func FunctionsWrite(ptr, size uint32) {
	functionsWrite(ptr, size)
}

func LogWrite(ptr, size uint32) {
	logWrite(ptr, size)
}
