package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/splice/pkg/types"
)

// isolate points every config lookup at an empty temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SPLICE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("SPLICE_REPEATED", "")
	t.Setenv("SPLICE_IGNORE_CASE", "")
	t.Setenv("SPLICE_STATS", "")
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Repeated {
		t.Error("expected single-shot mode by default")
	}
	if cfg.IgnoreCase || cfg.Follow || cfg.Stats {
		t.Error("expected all behavior flags off by default")
	}
	if cfg.Profiles == nil {
		t.Error("expected empty profile map")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Repeated {
		t.Error("expected defaults when no config file exists")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "splice.yaml")
	content := `repeated: true
ignore_case: true
stats: true
profiles:
  pem:
    start: "-----BEGIN"
    stop: "-----END"
    description: PEM blocks
  once:
    start: "^<<"
    stop: "^>>"
    repeated: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLICE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Repeated {
		t.Error("expected Repeated to be true")
	}
	if !cfg.IgnoreCase {
		t.Error("expected IgnoreCase to be true")
	}
	if !cfg.Stats {
		t.Error("expected Stats to be true")
	}
	if len(cfg.Profiles) != 2 {
		t.Fatalf("expected 2 profiles but got %d", len(cfg.Profiles))
	}
	if cfg.Profiles["pem"].Start != "-----BEGIN" {
		t.Errorf("unexpected pem start: %q", cfg.Profiles["pem"].Start)
	}
	if names := cfg.ProfileNames(); names[0] != "once" || names[1] != "pem" {
		t.Errorf("expected sorted profile names but got %v", names)
	}
}

func TestLoadFromXDG(t *testing.T) {
	dir := isolate(t)

	if err := os.MkdirAll(filepath.Join(dir, "splice"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "splice", "config.yaml"), []byte("repeated: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Repeated {
		t.Error("expected XDG config file to be read")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("repeated: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLICE_CONFIG", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if types.KindOf(err) != types.KindConfig {
		t.Errorf("expected config error but got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected path in error: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
		wantErr   bool
	}{
		{
			name:    "repeated true",
			envVars: map[string]string{"SPLICE_REPEATED": "true"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if !cfg.Repeated {
					t.Error("expected Repeated to be true")
				}
			},
		},
		{
			name:    "numeric booleans",
			envVars: map[string]string{"SPLICE_IGNORE_CASE": "1", "SPLICE_STATS": "yes"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if !cfg.IgnoreCase || !cfg.Stats {
					t.Error("expected IgnoreCase and Stats to be true")
				}
			},
		},
		{
			name:    "invalid boolean",
			envVars: map[string]string{"SPLICE_REPEATED": "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				} else if !strings.Contains(err.Error(), "SPLICE_REPEATED") {
					t.Errorf("expected variable name in error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.checkFunc(t, cfg)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "splice.yaml")
	if err := os.WriteFile(path, []byte("repeated: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLICE_CONFIG", path)
	t.Setenv("SPLICE_REPEATED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Repeated {
		t.Error("expected environment to override file")
	}
}

func TestApplyProfile(t *testing.T) {
	no := false
	cfg := DefaultConfig()
	cfg.Repeated = true
	cfg.Profiles["pem"] = Profile{Start: "BEGIN", Stop: "END"}
	cfg.Profiles["once"] = Profile{Start: "<<", Stop: ">>", Repeated: &no}
	cfg.Profiles["half"] = Profile{Start: "<<"}

	if err := cfg.ApplyProfile("pem"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Start != "BEGIN" || cfg.Stop != "END" {
		t.Errorf("unexpected patterns %q / %q", cfg.Start, cfg.Stop)
	}
	if !cfg.Repeated {
		t.Error("expected profile without repeated to leave mode alone")
	}

	if err := cfg.ApplyProfile("once"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Repeated {
		t.Error("expected profile to switch to single-shot")
	}

	err := cfg.ApplyProfile("missing")
	if types.KindOf(err) != types.KindConfig {
		t.Errorf("expected config error for unknown profile but got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "pem") {
		t.Errorf("expected available profiles to be listed: %v", err)
	}

	if err := cfg.ApplyProfile("half"); types.KindOf(err) != types.KindConfig {
		t.Errorf("expected config error for incomplete profile but got %v", err)
	}
}

func TestCompile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = "begin"
	cfg.Stop = "end"
	cfg.IgnoreCase = true

	if err := cfg.Compile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.StartPattern().MatchString("BEGIN") {
		t.Error("expected case-insensitive start pattern")
	}
	if cfg.StopPattern().Name != "stop" {
		t.Errorf("unexpected stop name %q", cfg.StopPattern().Name)
	}

	cfg.Stop = "[bad"
	err := cfg.Compile()
	if types.KindOf(err) != types.KindPattern {
		t.Fatalf("expected pattern error but got %v", err)
	}
	if !strings.Contains(err.Error(), "stop") {
		t.Errorf("expected failing pattern name in error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	compiled := func(mod func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.Start, cfg.Stop = "a", "b"
		if err := cfg.Compile(); err != nil {
			t.Fatal(err)
		}
		mod(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "stdin", cfg: compiled(func(c *Config) {})},
		{name: "file", cfg: compiled(func(c *Config) { c.Input = "in.txt" })},
		{name: "command", cfg: compiled(func(c *Config) { c.Command = []string{"make"} })},
		{name: "follow file", cfg: compiled(func(c *Config) { c.Input, c.Follow = "in.txt", true })},
		{name: "not compiled", cfg: DefaultConfig(), wantErr: "compiled"},
		{
			name:    "file and command",
			cfg:     compiled(func(c *Config) { c.Input, c.Command = "in.txt", []string{"make"} }),
			wantErr: "cannot both",
		},
		{
			name:    "follow command",
			cfg:     compiled(func(c *Config) { c.Follow, c.Command = true, []string{"make"} }),
			wantErr: "command",
		},
		{
			name:    "follow stdin",
			cfg:     compiled(func(c *Config) { c.Follow, c.Input = true, "-" }),
			wantErr: "requires an input file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q but got %v", tt.wantErr, err)
			}
			if types.KindOf(err) != types.KindConfig {
				t.Errorf("expected config error kind but got %v", types.KindOf(err))
			}
		})
	}
}

func TestDebug(t *testing.T) {
	for value, want := range map[string]bool{"": false, "1": true, "true": true, "0": false} {
		t.Setenv("SPLICE_DEBUG", value)
		if Debug() != want {
			t.Errorf("SPLICE_DEBUG=%q: expected %v", value, want)
		}
	}
}
