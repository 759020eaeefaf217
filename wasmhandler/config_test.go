package wasmhandler

import (
	"testing"

	"github.com/alixinne/omw/runtime"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "missing path",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "path only",
			config:  Config{Path: "handler.wasm"},
			wantErr: false,
		},
		{
			name: "valid runtime mode",
			config: Config{
				Path:    "handler.wasm",
				Runtime: runtime.Config{Mode: runtime.ModeCompiled},
			},
			wantErr: false,
		},
		{
			name: "invalid runtime mode",
			config: Config{
				Path:    "handler.wasm",
				Runtime: runtime.Config{Mode: "jit"},
			},
			wantErr: true,
		},
		{
			name: "unknown runtime type",
			config: Config{
				Path:    "handler.wasm",
				Runtime: runtime.Config{Type: "unregistered"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPluginConfigDecode(t *testing.T) {
	type scaleConfig struct {
		Factor float32 `mapstructure:"factor"`
		Label  string  `mapstructure:"label"`
	}

	cfg := PluginConfig{"factor": 2, "label": "gain"}

	var decoded scaleConfig
	if err := cfg.Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Factor != 2 || decoded.Label != "gain" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestPluginConfigDecodeRejectsMistypedValue(t *testing.T) {
	type scaleConfig struct {
		Factor float32 `mapstructure:"factor"`
	}

	var decoded scaleConfig
	if err := (PluginConfig{"factor": "not a number"}).Decode(&decoded); err == nil {
		t.Fatal("expected a decode error")
	}
}
