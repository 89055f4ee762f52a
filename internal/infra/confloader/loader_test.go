package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Gateway struct {
		Endpoint string `koanf:"endpoint"`
		Region   string `koanf:"region"`
	} `koanf:"gateway"`
	Output string `koanf:"output"`
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeTempYAML(t, `
gateway:
  endpoint: http://localhost:8080
  region: us-east-1
output: table
`)

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.Endpoint != "http://localhost:8080" {
		t.Errorf("endpoint = %q", cfg.Gateway.Endpoint)
	}
	if cfg.Gateway.Region != "us-east-1" {
		t.Errorf("region = %q", cfg.Gateway.Region)
	}
	if cfg.Output != "table" {
		t.Errorf("output = %q", cfg.Output)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load")
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeTempYAML(t, `
gateway:
  endpoint: http://localhost:8080
  region: us-east-1
`)
	t.Setenv("SESSIONDX_GATEWAY__REGION", "eu-west-1")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.Region != "eu-west-1" {
		t.Errorf("region = %q, want env override eu-west-1", cfg.Gateway.Region)
	}
	if cfg.Gateway.Endpoint != "http://localhost:8080" {
		t.Errorf("endpoint = %q, file value should survive", cfg.Gateway.Endpoint)
	}
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("SXTEST_OUTPUT", "json")

	l := NewLoader(WithEnvPrefix("SXTEST_"))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("output = %q, want json", cfg.Output)
	}
}

func TestLoader_LoadMapOverrides(t *testing.T) {
	path := writeTempYAML(t, `
output: table
`)

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Flag layer overrides everything.
	if err := l.LoadMap(map[string]any{"output": "json"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("output = %q, want flag override json", cfg.Output)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(WithConfigFile("/nonexistent/cli.yaml"))
	var cfg testConfig
	if err := l.Load(&cfg); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}
}

func TestLoader_Getters(t *testing.T) {
	path := writeTempYAML(t, `
gateway:
  endpoint: http://gw:9090
recorder:
  max_attempts: 3
verbose: true
`)

	l := NewLoader(WithConfigFile(path))
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := l.GetString("gateway.endpoint"); got != "http://gw:9090" {
		t.Errorf("GetString = %q", got)
	}
	if got := l.GetInt("recorder.max_attempts"); got != 3 {
		t.Errorf("GetInt = %d", got)
	}
	if got := l.GetBool("verbose"); !got {
		t.Error("GetBool = false, want true")
	}
}
