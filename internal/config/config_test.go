package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/openai-cost-tui/internal/models"
)

// isolate points HOME and the working directory at a fresh temp dir so no
// real config or .env leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Chdir(tmpDir)
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	wantDir := filepath.Join(home, ".config", "oct")
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"RefreshIntervalMinutes", cfg.RefreshIntervalMinutes, 60},
		{"DefaultMode", cfg.DefaultMode, "month"},
		{"BaseURL", cfg.BaseURL, "https://api.openai.com"},
		{"PageLimit", cfg.PageLimit, 100},
		{"FollowPages", cfg.FollowPages, false},
		{"MaxPages", cfg.MaxPages, 10},
		{"RequestTimeout", cfg.RequestTimeout, 30 * time.Second},
		{"DataDir", cfg.DataDir, wantDir},
		{"LogFile", cfg.LogFile, filepath.Join(wantDir, "oct.log")},
		{"LogLevel", cfg.LogLevel, "info"},
		{"DesktopNotifications", cfg.DesktopNotifications, true},
		{"File", cfg.File, filepath.Join(wantDir, "config.yaml")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if cfg.Mode() != models.ModeMonth {
		t.Errorf("Mode() = %v, want Month", cfg.Mode())
	}
	if _, err := os.Stat(wantDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, `
refresh_interval_minutes: 15
default_mode: today
base_url: http://localhost:8080/
follow_pages: true
max_pages: 3
request_timeout: 45s
data_dir: ~/oct-data
desktop_notifications: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.RefreshIntervalMinutes != 15 {
		t.Errorf("RefreshIntervalMinutes = %d", cfg.RefreshIntervalMinutes)
	}
	if cfg.Mode() != models.ModeToday {
		t.Errorf("Mode() = %v, want Today", cfg.Mode())
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if !cfg.FollowPages || cfg.MaxPages != 3 {
		t.Errorf("pagination = %v/%d", cfg.FollowPages, cfg.MaxPages)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.DataDir != filepath.Join(home, "oct-data") {
		t.Errorf("DataDir = %q, want ~ expanded", cfg.DataDir)
	}
	if cfg.DesktopNotifications {
		t.Error("DesktopNotifications should be false")
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if cfg.DatabasePath() != filepath.Join(home, "oct-data", "oct.db") {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
	if cfg.MasterKeyPath() != filepath.Join(home, "oct-data", "master.key") {
		t.Errorf("MasterKeyPath() = %q", cfg.MasterKeyPath())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "oct", "config.yaml"), "refresh_interval_minutes: 15\n")

	t.Setenv("OCT_REFRESH_INTERVAL_MINUTES", "120")
	t.Setenv("OCT_FOLLOW_PAGES", "true")
	t.Setenv("OCT_REQUEST_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.RefreshIntervalMinutes != 120 {
		t.Errorf("RefreshIntervalMinutes = %d, want env value 120", cfg.RefreshIntervalMinutes)
	}
	if !cfg.FollowPages {
		t.Error("FollowPages should come from env")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".env"), "OCT_DEFAULT_MODE=today\nOCT_LOG_LEVEL=debug\n")
	t.Cleanup(func() {
		os.Unsetenv("OCT_DEFAULT_MODE")
		os.Unsetenv("OCT_LOG_LEVEL")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Mode() != models.ModeToday {
		t.Errorf("Mode() = %v, want Today from .env", cfg.Mode())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "bad.yaml")
	writeFile(t, path, "default_mode: fortnight\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "default_mode") {
		t.Errorf("Load() error = %v, want default_mode error", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "broken.yaml")
	writeFile(t, path, "refresh_interval_minutes: [unterminated\n")

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "nope.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with missing file failed: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
}

func TestSave(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "out", "config.yaml")

	cfg := Default()
	cfg.RefreshIntervalMinutes = 10
	cfg.RequestTimeout = 90 * time.Second

	if err := Save(cfg, path, false); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "request_timeout: 1m30s") {
		t.Errorf("saved YAML should carry a readable duration:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of saved file failed: %v", err)
	}
	if loaded.RefreshIntervalMinutes != 10 || loaded.RequestTimeout != 90*time.Second {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := Save(cfg, path, false); err == nil {
		t.Error("Save() should refuse to overwrite without overwrite=true")
	}
	if err := Save(cfg, path, true); err != nil {
		t.Errorf("Save() with overwrite failed: %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	home := isolate(t)

	paths := getEnvPaths()
	want := []string{
		filepath.Join(home, ".env"),
		filepath.Join(home, ".config", "oct", ".env"),
	}
	if len(paths) != len(want) {
		t.Fatalf("getEnvPaths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	tests := map[string]string{
		"~":         home,
		"~/x/y":     filepath.Join(home, "x", "y"),
		"/abs/path": "/abs/path",
		"rel/~":     "rel/~",
	}
	for in, want := range tests {
		if got := expandHome(in); got != want {
			t.Errorf("expandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
