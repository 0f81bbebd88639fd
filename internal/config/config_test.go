package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmbeddedBrokerDefaultsOn(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.Bus.EmbeddedBroker() {
		t.Fatal("embedded broker must default on")
	}
}

func TestConfigFileCanDisableEmbeddedBroker(t *testing.T) {
	path := writeConfigFile(t, `
bus:
  url: nats://nats.internal:4222
  embedded: false
`)
	t.Setenv(configPathEnv, path)
	t.Setenv(busEmbeddedEnv, "")

	cfg := Load()
	if cfg.Bus.EmbeddedBroker() {
		t.Fatal("embedded: false in the config file must disable the broker")
	}
	if cfg.Bus.URL != "nats://nats.internal:4222" {
		t.Fatalf("bus url not merged: %s", cfg.Bus.URL)
	}
}

func TestConfigFileLeavesEmbeddedBrokerOnWhenUnset(t *testing.T) {
	path := writeConfigFile(t, `
bus:
  url: nats://127.0.0.1:4222
`)
	t.Setenv(configPathEnv, path)
	t.Setenv(busEmbeddedEnv, "")

	cfg := Load()
	if !cfg.Bus.EmbeddedBroker() {
		t.Fatal("a file that says nothing about the broker must keep the default")
	}
}

func TestEnvOverrideDisablesEmbeddedBroker(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(busEmbeddedEnv, "false")

	cfg := Load()
	if cfg.Bus.EmbeddedBroker() {
		t.Fatal("BUS_EMBEDDED=false must disable the broker")
	}

	t.Setenv(busEmbeddedEnv, "true")
	cfg = Load()
	if !cfg.Bus.EmbeddedBroker() {
		t.Fatal("BUS_EMBEDDED=true must enable the broker")
	}
}
