package wazero

import "github.com/alixinne/omw/runtime"

func init() {
	runtime.Register(runtime.DefaultType, newWazeroRuntime)
}
