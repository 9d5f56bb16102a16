package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Checks) != 1 {
		t.Fatalf("Load() check count = %d, want 1", len(cfg.Checks))
	}

	check := cfg.Checks[0]
	if check.Name != "dashboard" {
		t.Errorf("default check name = %q, want %q", check.Name, "dashboard")
	}
	if check.TargetURL != DefaultTargetURL {
		t.Errorf("default target = %q, want %q", check.TargetURL, DefaultTargetURL)
	}
	if check.StartupDelaySeconds != DefaultStartupDelaySeconds {
		t.Errorf("default startup delay = %d, want %d", check.StartupDelaySeconds, DefaultStartupDelaySeconds)
	}
	if check.WaitSelector != DefaultWaitSelector {
		t.Errorf("default selector = %q, want %q", check.WaitSelector, DefaultWaitSelector)
	}
	if check.WaitTimeoutSeconds != DefaultWaitTimeoutSeconds {
		t.Errorf("default wait timeout = %d, want %d", check.WaitTimeoutSeconds, DefaultWaitTimeoutSeconds)
	}
	if cfg.ScreenshotDir != DefaultScreenshotDir {
		t.Errorf("default screenshot dir = %q, want %q", cfg.ScreenshotDir, DefaultScreenshotDir)
	}
}

func TestLoadSuiteFile(t *testing.T) {
	suite := `
screenshot_dir: artifacts
checks:
  - name: dashboard
    target_url: http://localhost:3000
  - name: admin
    target_url: http://localhost:3001/admin
    wait_selector: "#root"
    wait_timeout_seconds: 5
    startup_delay_seconds: 1
    baseline_path: baselines/admin.png
`
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(suite), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Checks) != 2 {
		t.Fatalf("check count = %d, want 2", len(cfg.Checks))
	}
	if cfg.ScreenshotDir != "artifacts" {
		t.Errorf("screenshot dir = %q, want %q", cfg.ScreenshotDir, "artifacts")
	}

	// Partially specified checks pick up defaults
	dashboard := cfg.FindCheck("dashboard")
	if dashboard == nil {
		t.Fatal("FindCheck(dashboard) = nil")
	}
	if dashboard.WaitSelector != DefaultWaitSelector {
		t.Errorf("dashboard selector = %q, want default %q", dashboard.WaitSelector, DefaultWaitSelector)
	}
	if dashboard.SuccessScreenshot != DefaultSuccessScreenshot {
		t.Errorf("dashboard success screenshot = %q, want default %q", dashboard.SuccessScreenshot, DefaultSuccessScreenshot)
	}

	admin := cfg.FindCheck("admin")
	if admin == nil {
		t.Fatal("FindCheck(admin) = nil")
	}
	if admin.WaitSelector != "#root" {
		t.Errorf("admin selector = %q, want %q", admin.WaitSelector, "#root")
	}
	if admin.WaitTimeoutSeconds != 5 {
		t.Errorf("admin wait timeout = %d, want 5", admin.WaitTimeoutSeconds)
	}
	if admin.BaselineThreshold == 0 {
		t.Error("admin baseline threshold not defaulted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file expected error, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SCREENSHOT_DIR", "/tmp/shots")
	t.Setenv("HEADLESS", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("port = %q, want %q", cfg.Port, "9999")
	}
	if cfg.ScreenshotDir != "/tmp/shots" {
		t.Errorf("screenshot dir = %q, want %q", cfg.ScreenshotDir, "/tmp/shots")
	}
	if cfg.Headless {
		t.Error("headless = true, want false from HEADLESS env")
	}
}

func TestFindCheckUnknown(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.FindCheck("missing"); got != nil {
		t.Errorf("FindCheck(missing) = %v, want nil", got)
	}
}
