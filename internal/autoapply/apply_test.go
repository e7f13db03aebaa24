package autoapply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/davidahmann/promogate/internal/safety"
	"github.com/davidahmann/promogate/pkg/types"
)

func leverageBounds() map[string]safety.Bounds {
	return map[string]safety.Bounds{
		"leverage": {Min: 0, Max: 3, MaxStep: 1},
	}
}

func acceptedProposal(target string, oldValue, newValue any, tags ...types.Tag) []types.PromotionProposal {
	return []types.PromotionProposal{{
		ProposalID: "promo_test_001",
		Decisions: []types.PromotionDecision{{
			Candidate: &types.PromotionCandidate{
				Patch: types.ConfigPatch{
					ID:       "p-1",
					Target:   target,
					OldValue: oldValue,
					NewValue: newValue,
					Status:   types.PatchAppliedOffline,
				},
				Tags:            tags,
				EligibleForLive: true,
			},
			Status: types.DecisionAcceptedForProposal,
		}},
	}}
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read overrides: %v", err)
	}
	doc := map[string]any{}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse overrides: %v", err)
	}
	return doc
}

func TestApplyNoOpOutsideBoundedAuto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_overrides.toml")
	proposals := acceptedProposal("portfolio.leverage", 1.0, 1.75, types.TagLeverage)

	for _, mode := range []types.AutoApplyMode{types.ModeDisabled, types.ModeManualOnly} {
		applied, err := Apply(proposals, Policy{Mode: mode, Bounds: leverageBounds()}, path)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if applied != nil {
			t.Fatalf("expected no updates in %s, got %v", mode, applied)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected zero file writes in %s", mode)
		}
	}
}

func TestApplyWritesInBoundsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_overrides.toml")
	proposals := acceptedProposal("portfolio.leverage", 1.0, 1.75, types.TagLeverage)

	applied, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: leverageBounds()}, path)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(applied) != 1 || applied[0].Target != "portfolio.leverage" {
		t.Fatalf("unexpected updates: %v", applied)
	}

	doc := readDoc(t, path)
	table, ok := doc["auto_applied"].(map[string]any)
	if !ok {
		t.Fatalf("missing auto_applied table: %v", doc)
	}
	if table["portfolio.leverage"] != 1.75 {
		t.Fatalf("unexpected value: %v", table["portfolio.leverage"])
	}
}

func TestApplyRejectsOutOfRangeAndOverStep(t *testing.T) {
	cases := []struct {
		name     string
		oldValue float64
		newValue float64
	}{
		{"out of range", 2.5, 3.5},
		{"over max_step", 1.0, 2.5},
	}

	for _, tc := range cases {
		path := filepath.Join(t.TempDir(), "live_overrides.toml")
		proposals := acceptedProposal("portfolio.leverage", tc.oldValue, tc.newValue, types.TagLeverage)

		applied, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: leverageBounds()}, path)
		if err != nil {
			t.Fatalf("%s: apply: %v", tc.name, err)
		}
		if applied != nil {
			t.Fatalf("%s: expected no updates, got %v", tc.name, applied)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s: expected no file write", tc.name)
		}
	}
}

func TestApplySkipsTagsWithoutBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_overrides.toml")
	proposals := acceptedProposal("risk.stop_loss", 0.05, 0.06, types.TagRisk)

	applied, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: leverageBounds()}, path)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != nil {
		t.Fatalf("expected no updates for unbounded tag, got %v", applied)
	}
}

// Bound resolution follows the precedence list: a candidate tagged both
// macro and trigger uses the macro bounds.
func TestApplyBoundPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_overrides.toml")
	bounds := map[string]safety.Bounds{
		"macro":   {Min: 0, Max: 1, MaxStep: 0.1},
		"trigger": {Min: 0, Max: 100, MaxStep: 100},
	}
	proposals := acceptedProposal("macro.trigger_weight", 0.5, 0.9, types.TagMacro, types.TagTrigger)

	applied, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: bounds}, path)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != nil {
		t.Fatalf("expected macro bounds (max_step 0.1) to reject, got %v", applied)
	}
}

func TestApplyPreservesOtherTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live_overrides.toml")
	existing := `
[portfolio]
base_currency = "USD"

[auto_applied]
"macro.sentiment_weight" = 0.4
`
	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	proposals := acceptedProposal("portfolio.leverage", 1.0, 1.75, types.TagLeverage)
	if _, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: leverageBounds()}, path); err != nil {
		t.Fatalf("apply: %v", err)
	}

	doc := readDoc(t, path)
	portfolio, ok := doc["portfolio"].(map[string]any)
	if !ok || portfolio["base_currency"] != "USD" {
		t.Fatalf("portfolio table not preserved: %v", doc)
	}
	table := doc["auto_applied"].(map[string]any)
	if table["macro.sentiment_weight"] != 0.4 {
		t.Fatalf("existing auto_applied entry lost: %v", table)
	}
	if table["portfolio.leverage"] != 1.75 {
		t.Fatalf("new entry missing: %v", table)
	}
}

func TestLoadOverridesAbsentVsCorrupt(t *testing.T) {
	doc, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("absent file must load empty, got %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document")
	}

	path := filepath.Join(t.TempDir(), "corrupt.toml")
	if err := os.WriteFile(path, []byte("[broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadOverrides(path); err == nil {
		t.Fatalf("corrupt file must fail loudly")
	}
}

func TestApplyFailsWhenLocked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live_overrides.toml")
	if err := os.WriteFile(path+".lock", nil, 0o600); err != nil {
		t.Fatalf("write lock: %v", err)
	}

	proposals := acceptedProposal("portfolio.leverage", 1.0, 1.75, types.TagLeverage)
	if _, err := Apply(proposals, Policy{Mode: types.ModeBoundedAuto, Bounds: leverageBounds()}, path); err == nil {
		t.Fatalf("expected lock error")
	}
}
