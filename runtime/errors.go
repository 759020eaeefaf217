package runtime

import "errors"

var (
	ErrRuntimeNotFound      = errors.New("runtime not found")
	ErrFunctionNotExported  = errors.New("function not exported")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMemoryExportNotFound = errors.New("memory export not found")
	ErrHostFunctionNotFound = errors.New("host function not found")
)
