package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davidahmann/promogate/pkg/types"
)

func TestLoadConfigExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promogate.yaml")

	os.Setenv("PROMO_DATA_DIR", dir)
	defer os.Unsetenv("PROMO_DATA_DIR")

	data := `
safety_config_path: "${PROMO_DATA_DIR}/safety.toml"
patches_path: "${PROMO_DATA_DIR}/patches.json"
proposals_dir: "${PROMO_DATA_DIR}/proposals"
mode: "manual_only"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SafetyConfigPath != filepath.Join(dir, "safety.toml") {
		t.Fatalf("expected expanded path, got %s", cfg.SafetyConfigPath)
	}
}

func TestValidateRequiresFields(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Config{
		SafetyConfigPath: "safety.toml",
		PatchesPath:      "patches.json",
		ProposalsDir:     "proposals",
		Mode:             "yolo",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateBoundedAutoNeedsOverridesPath(t *testing.T) {
	cfg := Config{
		SafetyConfigPath: "safety.toml",
		PatchesPath:      "patches.json",
		ProposalsDir:     "proposals",
		Mode:             "bounded_auto",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadPatchesDefaultsGeneratedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.json")
	data := `[
  {"id": "p-1", "target": "portfolio.leverage", "old_value": 1.0, "new_value": 1.5, "status": "APPLIED_OFFLINE"},
  {"id": "p-2", "target": "risk.stop_loss", "old_value": 0.05, "new_value": 0.04, "status": "PROPOSED", "generated_at": "2026-08-01T00:00:00Z"}
]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fixed := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	patches, err := LoadPatches(path, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if patches[0].GeneratedAt == nil || !patches[0].GeneratedAt.Equal(fixed) {
		t.Fatalf("expected defaulted generated_at, got %v", patches[0].GeneratedAt)
	}
	if patches[1].GeneratedAt == nil || patches[1].GeneratedAt.Equal(fixed) {
		t.Fatalf("explicit generated_at must be preserved")
	}
	if patches[0].Status != types.PatchAppliedOffline {
		t.Fatalf("unexpected status: %s", patches[0].Status)
	}
}

func TestLoadPatchesRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.json")
	data := `[{"id": "p-1", "target": "x", "status": "SHIPPED"}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPatches(path, time.Now); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadPatchesRejectsBadConfidence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.json")
	data := `[{"id": "p-1", "target": "x", "status": "PROPOSED", "confidence_score": 1.2}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPatches(path, time.Now); err == nil {
		t.Fatalf("expected error")
	}
}
