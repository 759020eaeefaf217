package wasmhandler

import (
	"fmt"

	"github.com/alixinne/omw/runtime"
)

const abiVersionV1MarkerExport = "omw_abi_version_0_1"

// ABIVersion represents the detected guest ABI.
type ABIVersion uint8

const (
	// ABIUnknown indicates that no known ABI marker was exported.
	ABIUnknown ABIVersion = iota
	// ABIV1 indicates the guest exports the ABI v1 marker.
	ABIV1
)

func (v ABIVersion) String() string {
	switch v {
	case ABIV1:
		return "v1"
	case ABIUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

func detectABIVersion(mod runtime.ModuleInstance) ABIVersion {
	if mod == nil {
		return ABIUnknown
	}
	if mod.Function(abiVersionV1MarkerExport) != nil {
		return ABIV1
	}
	return ABIUnknown
}

// StatusCode represents the result status code from guest function calls
type StatusCode uint32

// String returns the string representation of the status code
func (s StatusCode) String() string {
	switch s {
	case 0:
		return "OK"
	case 1:
		return "ERROR"
	case 2:
		return "INVALID_ARGUMENT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Parameter host functions report their outcome as an i64 with the
// status in the high half and a payload in the low half. The payload
// carries the encoded size for reads, the element count for sequences
// and the absence flag for optional probes.
const (
	callOK uint32 = iota
	// callGrow asks the guest to retry with a buffer of at least
	// payload bytes. The host keeps the value, so the retry does not
	// consume a second time.
	callGrow
	// callMismatch reports a typed read that did not match. Nothing
	// was consumed.
	callMismatch
	// callFailed reports a stream error. The text is available through
	// call_error.
	callFailed
)

func packResult(status, payload uint32) uint64 {
	return uint64(status)<<32 | uint64(payload)
}
