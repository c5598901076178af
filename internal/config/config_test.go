package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"randomcarnegie.app/internal/setup"
	"randomcarnegie.app/internal/setup/buildings"
	"randomcarnegie.app/internal/setup/players"
)

func TestLoad_SetupYAML(t *testing.T) {
	cfg, err := Load("../../configs/setup.yaml")
	if err != nil {
		t.Fatalf("load setup.yaml: %v", err)
	}
	if cfg.Server.Addr != ":8080" || !cfg.Server.EnableWS || cfg.Server.MaxQueue != 8 {
		t.Fatalf("server section: %+v", cfg.Server)
	}
	if cfg.Defaults != setup.DefaultOptions() {
		t.Fatalf("defaults: got %+v want %+v", cfg.Defaults, setup.DefaultOptions())
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoad_OverridesAndNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	body := `
server:
  public_url: "https://carnegie.example/"
  max_queue: 0
data_dir: "  "
disable_db: true
defaults:
  tiles: both
  limit: 8
  permanent: 0+
  players: all
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.PublicURL != "https://carnegie.example" {
		t.Fatalf("public_url not trimmed: %q", cfg.Server.PublicURL)
	}
	if cfg.Server.MaxQueue != 8 || cfg.DataDir != "./data" || cfg.Server.Addr != ":8080" {
		t.Fatalf("normalize did not restore defaults: %+v", cfg)
	}
	if !cfg.DisableDB {
		t.Fatalf("disable_db should be true")
	}
	want := setup.Options{
		Tiles:     buildings.Both,
		Limit:     buildings.LimitAll,
		Permanent: buildings.ZeroPlus,
		Players:   players.All,
	}
	if cfg.Defaults != want {
		t.Fatalf("defaults: got %+v want %+v", cfg.Defaults, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"bad_limit.yaml":   "defaults:\n  limit: 7\n",
		"bad_players.yaml": "defaults:\n  players: \"6\"\n",
		"bad_url.yaml":     "server:\n  public_url: ftp://x\n",
		"bad_yaml.yaml":    "server: [\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := Load(path)
		if err == nil || !strings.HasPrefix(err.Error(), "setup.yaml: ") {
			t.Fatalf("%s: got %v", name, err)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: got %v", err)
	}
}
