package imports

import (
	"testing"
)

func swapConfig(t *testing.T, raw []byte) {
	t.Helper()
	prev := rawConfigRead
	rawConfigRead = func() []byte { return raw }
	t.Cleanup(func() { rawConfigRead = prev })
}

func TestGetConfig(t *testing.T) {
	swapConfig(t, []byte(`{"name":"demo","threshold":2.5}`))

	var cfg struct {
		Name      string  `json:"name"`
		Threshold float64 `json:"threshold"`
	}
	if err := GetConfig(&cfg); err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Name != "demo" || cfg.Threshold != 2.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestGetConfigNull(t *testing.T) {
	swapConfig(t, []byte(`null`))

	var cfg map[string]any
	if err := GetConfig(&cfg); err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config, got %v", cfg)
	}
}

func TestGetConfigMalformed(t *testing.T) {
	swapConfig(t, []byte(`{`))

	var cfg map[string]any
	if err := GetConfig(&cfg); err == nil {
		t.Fatal("expected an error for malformed config")
	}
}
