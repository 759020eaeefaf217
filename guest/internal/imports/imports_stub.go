//go:build !wasm

package imports

// This file is used to stub out the imports for running tests.

func paramRead(kind, idx, data, namePtr, nameLen, buf, bufLimit uint32) uint64 { return 0 }

func paramCheck(idx, namePtr, nameLen uint32) uint64 { return 0 }

func paramAbsent(idx, namePtr, nameLen uint32) uint64 { return 0 }

func paramEnter(idx, namePtr, nameLen, arity uint32) uint64 { return 0 }

func paramLeave(idx uint32) { return }

func paramSeq(firstIdx, arity uint32) uint64 { return 0 }

func resultWrite(ptr, size uint32) { return }

func callFail(ptr, size uint32) { return }

func callError(ptr, limit uint32) uint32 { return 0 }

func configRead(ptr, limit uint32) uint32 { return 0 }

func functionsWrite(ptr, size uint32) { return }

func logWrite(ptr, size uint32) { return }
