package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" || cfg.MaxTokens != 150 || cfg.Prompt != "aish> " {
		t.Errorf("defaults wrong: %+v", cfg)
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("model: gpt-4o\nmaxTokens: 99\nprompt: \"$ \"\ncacheTTL: 1h\nnoCache: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model: got %q", cfg.Model)
	}
	if cfg.MaxTokens != 99 {
		t.Errorf("maxTokens: got %d", cfg.MaxTokens)
	}
	if cfg.Prompt != "$ " {
		t.Errorf("prompt: got %q", cfg.Prompt)
	}
	if cfg.TTL() != time.Hour {
		t.Errorf("ttl: got %v", cfg.TTL())
	}
	if !cfg.NoCache {
		t.Error("noCache: got false")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("malformed config should be a startup error")
	}
}

func TestTTL_BadValue(t *testing.T) {
	cfg := Default()
	cfg.CacheTTL = "not-a-duration"
	if cfg.TTL() != 24*time.Hour {
		t.Errorf("bad TTL should fall back: got %v", cfg.TTL())
	}
}

func TestHistoryPath_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	if got := cfg.HistoryPath(); got != filepath.Join(home, ".aish_history") {
		t.Errorf("history path: got %q", got)
	}
	if got := cfg.LogPath(); got != filepath.Join(home, ".aish_log") {
		t.Errorf("log path: got %q", got)
	}
}
