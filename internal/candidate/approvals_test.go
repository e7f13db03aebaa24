package candidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davidahmann/promogate/pkg/types"
)

func TestLoadApprovals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.yaml")
	data := `
eligible:
  - patch_id: "p-1"
    note: "reviewed 2026-08-28"
  - patch_id: "p-9"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	approvals, err := LoadApprovals(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(approvals.Eligible) != 2 {
		t.Fatalf("expected 2 approvals, got %d", len(approvals.Eligible))
	}
}

func TestLoadApprovalsMissingFileIsEmpty(t *testing.T) {
	approvals, err := LoadApprovals(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(approvals.Eligible) != 0 {
		t.Fatalf("expected no approvals")
	}
}

func TestLoadApprovalsRequiresPatchID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.yaml")
	if err := os.WriteFile(path, []byte("eligible:\n  - note: \"no id\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadApprovals(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyApprovals(t *testing.T) {
	candidates := Build([]types.ConfigPatch{
		{ID: "p-1", Target: "portfolio.leverage", Status: types.PatchAppliedOffline},
		{ID: "p-2", Target: "risk.stop_loss", Status: types.PatchAppliedOffline},
	})

	ApplyApprovals(candidates, Approvals{Eligible: []Approval{
		{PatchID: "p-1", Note: "ok"},
		{PatchID: "p-unknown"},
	}})

	if !candidates[0].EligibleForLive {
		t.Fatalf("expected p-1 eligible")
	}
	if len(candidates[0].Notes) != 1 {
		t.Fatalf("expected approval note, got %v", candidates[0].Notes)
	}
	if candidates[1].EligibleForLive {
		t.Fatalf("p-2 must stay ineligible")
	}
}
