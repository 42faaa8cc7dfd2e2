package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendKind() != "file" || cfg.UserCookie != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_AcceptsComments(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	src := `{
  // session cookie copied from the browser
  "userCookie": "pg&abc",
  "backend": {
    "kind": "SQLite", /* case-insensitive */
  },
  "debounceMs": 100,
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserCookie != "pg&abc" || cfg.DebounceMs != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BackendKind() != "sqlite" {
		t.Fatalf("expected sqlite, got %q", cfg.BackendKind())
	}
	dataDir, err := cfg.DataDir()
	if err != nil || dataDir != dir {
		t.Fatalf("expected data dir %q, got %q (%v)", dir, dataDir, err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSave_KeepsBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	if err := Save(&Config{BaseURL: "http://one/"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(&Config{BaseURL: "http://two/", TUI: &TUIConfig{Glyphs: "ascii"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://two/" || cfg.TUI == nil || cfg.TUI.Glyphs != "ascii" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	bak, err := os.ReadFile(filepath.Join(dir, "config.json.bak"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(bak), "http://one/") {
		t.Fatalf("backup should hold the previous config, got %s", bak)
	}

	st, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", st.Mode().Perm())
	}

	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{UserCookie: "pg&secret"}
	if got := cfg.Redacted().UserCookie; got != "pg&…" {
		t.Fatalf("unexpected redaction %q", got)
	}
	if cfg.UserCookie != "pg&secret" {
		t.Fatalf("Redacted mutated the receiver")
	}
}
