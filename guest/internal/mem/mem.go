// Package mem moves byte buffers across the guest module boundary.
package mem

import (
	"runtime"
	"unsafe"
)

// BufLimit is the capacity in bytes of a buffer a guest hands to a
// host call.
type BufLimit = uint32

// readBuf is the scratch buffer host calls write into. It grows to the
// largest payload seen and is never handed out directly.
var readBuf = make([]byte, 2048)

// StringToPtr returns the pointer and size of the string data. The
// caller must keep s alive until the host call returns.
func StringToPtr(s string) (uint32, uint32) {
	if len(s) == 0 {
		return 0, 0
	}
	ptr := unsafe.Pointer(unsafe.StringData(s))
	return uint32(uintptr(ptr)), uint32(len(s))
}

// BytesToPtr returns the pointer and size of the slice data. The
// caller must keep b alive until the host call returns.
func BytesToPtr(b []byte) (uint32, uint32) {
	if len(b) == 0 {
		return 0, 0
	}
	ptr := unsafe.Pointer(unsafe.SliceData(b))
	return uint32(uintptr(ptr)), uint32(len(b))
}

// GetBytes collects a host payload through fn, which receives a buffer
// and returns the payload's full size. When the buffer is too small
// the call is repeated with a larger one, per the host convention that
// oversized payloads report their size without being written.
func GetBytes(fn func(ptr uint32, limit BufLimit) (size uint32)) []byte {
	for {
		ptr, limit := BytesToPtr(readBuf)
		size := fn(ptr, limit)
		runtime.KeepAlive(readBuf) // until ptr is no longer needed.
		if size == 0 {
			return nil
		}
		if size <= limit {
			out := make([]byte, size)
			copy(out, readBuf[:size])
			return out
		}
		readBuf = make([]byte, size)
	}
}
