// Package imports exposes the host services guest handlers can call
// directly.
package imports

import (
	"encoding/json"

	internal "github.com/alixinne/omw/guest/internal/imports"
	"github.com/alixinne/omw/guest/internal/mem"
)

var rawConfigRead = func() []byte {
	return mem.GetBytes(func(ptr uint32, limit mem.BufLimit) (size uint32) {
		return internal.ConfigRead(ptr, limit)
	})
}

// GetConfig unmarshals the configuration block the host carries for
// this module into v.
func GetConfig(v any) error {
	rawMsg := rawConfigRead()
	return json.Unmarshal(rawMsg, v)
}
