//go:build wasm

package imports

//go:wasmimport omw param_read
func paramRead(kind, idx, data, namePtr, nameLen, buf, bufLimit uint32) uint64

//go:wasmimport omw param_check
func paramCheck(idx, namePtr, nameLen uint32) uint64

//go:wasmimport omw param_absent
func paramAbsent(idx, namePtr, nameLen uint32) uint64

//go:wasmimport omw param_enter
func paramEnter(idx, namePtr, nameLen, arity uint32) uint64

//go:wasmimport omw param_leave
func paramLeave(idx uint32)

//go:wasmimport omw param_seq
func paramSeq(firstIdx, arity uint32) uint64

//go:wasmimport omw result_write
func resultWrite(ptr, size uint32)

//go:wasmimport omw call_fail
func callFail(ptr, size uint32)

//go:wasmimport omw call_error
func callError(ptr, limit uint32) uint32

//go:wasmimport omw config_read
func configRead(ptr, limit uint32) uint32

//go:wasmimport omw functions_write
func functionsWrite(ptr, size uint32)

//go:wasmimport omw log_write
func logWrite(ptr, size uint32)
