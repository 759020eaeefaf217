package plugin

import (
	"fmt"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/codec"
)

// Statuses omw_invoke returns to the host.
const (
	statusSuccess uint32 = 0
	statusError   uint32 = 1
)

var (
	_ func(uint32) uint32 = _invoke
	_ func()              = _functions
	_ func()              = _abiVersion01
)

//go:wasmexport omw_invoke
func _invoke(idx uint32) uint32 {
	if int(idx) >= len(handlers) {
		rawCallFail(fmt.Sprintf("no function registered at index %d", idx))
		return statusError
	}

	sink := newResultSink()
	c := omw.NewCall(hostStream{}, sink)
	if err := handlers[idx](c); err != nil {
		rawCallFail(err.Error())
		return statusError
	}
	sink.flush()
	return statusSuccess
}

//go:wasmexport omw_functions
func _functions() {
	rawFunctionsWrite(codec.AppendStrings(nil, names))
}

//go:wasmexport omw_abi_version_0_1
func _abiVersion01() {}
