package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "omw.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Namespace != "OMW" {
		t.Fatalf("Namespace = %q, want OMW", cfg.Namespace)
	}
	if cfg.Debug || cfg.MatricesAsImages || len(cfg.Modules) != 0 {
		t.Fatalf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
namespace: Vision
matrices_as_images: true
modules:
  - path: guest.wasm
    plugin_config:
      factor: 2
`)

	cfg, err := loadConfig(path, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Namespace != "Vision" {
		t.Fatalf("Namespace = %q, want Vision", cfg.Namespace)
	}
	if !cfg.MatricesAsImages {
		t.Fatal("MatricesAsImages not set")
	}
	if len(cfg.Modules) != 1 || cfg.Modules[0].Path != "guest.wasm" {
		t.Fatalf("Modules = %+v", cfg.Modules)
	}
	if cfg.Modules[0].PluginConfig["factor"] != 2 {
		t.Fatalf("PluginConfig = %+v", cfg.Modules[0].PluginConfig)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "namespace: FromFile\n")
	t.Setenv("OMW_NAMESPACE", "FromEnv")

	cfg, err := loadConfig(path, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Namespace != "FromEnv" {
		t.Fatalf("Namespace = %q, want FromEnv", cfg.Namespace)
	}
}

func TestLoadConfigModuleFlagsAppend(t *testing.T) {
	path := writeConfig(t, "modules:\n  - path: first.wasm\n")

	cfg, err := loadConfig(path, []string{"second.wasm"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Fatal("debug flag not applied")
	}
	if len(cfg.Modules) != 2 || cfg.Modules[1].Path != "second.wasm" {
		t.Fatalf("Modules = %+v", cfg.Modules)
	}
}

func TestLoadConfigRejectsPathlessModule(t *testing.T) {
	path := writeConfig(t, "modules:\n  - plugin_config: {}\n")

	if _, err := loadConfig(path, nil, false); err == nil {
		t.Fatal("expected a validation error")
	}
}
