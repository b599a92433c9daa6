package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Parser != "claude-code" {
		t.Errorf("default sources = %+v", cfg.Sources)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Config{
		General: GeneralConfig{DBPath: "/tmp/custom.db", DefaultLimit: 25},
		Sources: []Source{
			{Parser: "claude-code", Path: "/logs/claude"},
			{Parser: "other", Path: "/logs/other"},
		},
	}
	if err := Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.General != want.General {
		t.Errorf("general = %+v, want %+v", got.General, want.General)
	}
	if len(got.Sources) != 2 || got.Sources[0] != want.Sources[0] || got.Sources[1] != want.Sources[1] {
		t.Errorf("sources = %+v", got.Sources)
	}
}

func TestLoad_EmptySourcesBackfilled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "sesame", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general]\ndefault_limit = 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DefaultLimit != 5 {
		t.Errorf("default_limit = %d", cfg.General.DefaultLimit)
	}
	if len(cfg.Sources) == 0 {
		t.Error("empty sources not backfilled with defaults")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "sesame", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general\nbroken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("want an error for malformed TOML")
	}
}

func TestDBPath(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)

	var cfg Config
	if got, want := cfg.DBPath(), filepath.Join(dataDir, "sesame", "index.db"); got != want {
		t.Errorf("default DBPath = %q, want %q", got, want)
	}

	cfg.General.DBPath = "/elsewhere/index.db"
	if got := cfg.DBPath(); got != "/elsewhere/index.db" {
		t.Errorf("override DBPath = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		in, want string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
