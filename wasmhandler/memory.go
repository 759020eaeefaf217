package wasmhandler

import (
	"github.com/tetratelabs/wazero/api"
)

// These utility functions are derived from the kube-scheduler-wasm-extension.
// https://github.com/kubernetes-sigs/kube-scheduler-wasm-extension

// writeBytesIfUnderLimit writes bytes to memory if they fit within the
// limit. It always returns the full size, so a caller whose buffer was
// too small can retry with one large enough.
func writeBytesIfUnderLimit(memory api.Memory, bytes []byte, buf, bufLimit uint32) uint32 {
	size := uint32(len(bytes))
	if size > bufLimit {
		return size
	}
	if size == 0 {
		return 0
	}
	if !memory.Write(buf, bytes) {
		return 0
	}
	return size
}
