// Package autoapply writes small, in-bounds numeric changes from accepted
// proposals directly into the live-override TOML document. It is the only
// part of the engine that touches live configuration, and it only runs in
// bounded_auto mode.
package autoapply

import (
	"github.com/davidahmann/promogate/internal/safety"
	"github.com/davidahmann/promogate/pkg/types"
)

const overridesTable = "auto_applied"

// boundPrecedence is the explicit order in which a candidate's tags are
// checked for configured bounds; the first tag with bounds wins. The order
// is a constant so a multi-tagged target can never silently pick up a
// looser bound.
var boundPrecedence = []types.Tag{types.TagLeverage, types.TagMacro, types.TagTrigger}

// Policy is the auto-apply configuration: the run mode plus the per-tag
// bounds the transformer enforces.
type Policy struct {
	Mode   types.AutoApplyMode
	Bounds map[string]safety.Bounds
}

// PolicyFromConfig derives the transformer policy from the loaded safety
// config.
func PolicyFromConfig(mode types.AutoApplyMode, cfg safety.Config) Policy {
	return Policy{Mode: mode, Bounds: cfg.Bounds}
}

// Applied records one value written to the live overrides.
type Applied struct {
	Target   string
	OldValue float64
	NewValue float64
}

// Apply merges every qualifying accepted decision across all proposals
// into the [auto_applied] table of the live-override document. In any mode
// other than bounded_auto it performs zero file writes and returns nothing.
// All other top-level tables and keys in the document are preserved.
func Apply(proposals []types.PromotionProposal, policy Policy, overridesPath string) ([]Applied, error) {
	if policy.Mode != types.ModeBoundedAuto {
		return nil, nil
	}

	var updates []Applied
	for _, p := range proposals {
		for _, d := range p.Decisions {
			if change, ok := qualify(d, policy); ok {
				updates = append(updates, change)
			}
		}
	}
	if len(updates) == 0 {
		return nil, nil
	}

	release, err := acquireLock(overridesPath)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := LoadOverrides(overridesPath)
	if err != nil {
		return nil, err
	}

	table := autoAppliedTable(doc)
	for _, u := range updates {
		table[u.Target] = u.NewValue
	}
	doc[overridesTable] = table

	if err := storeOverrides(overridesPath, doc); err != nil {
		return nil, err
	}
	return updates, nil
}

// qualify checks one accepted decision against the transformer bounds:
// numeric new value, a tag with configured bounds in precedence order, and
// both the range and max-step constraints of that bound.
func qualify(d types.PromotionDecision, policy Policy) (Applied, bool) {
	patch := d.Candidate.Patch

	newValue, ok := patch.NumericNewValue()
	if !ok {
		return Applied{}, false
	}
	oldValue, ok := patch.NumericOldValue()
	if !ok {
		return Applied{}, false
	}

	bounds, ok := resolveBounds(d.Candidate, policy)
	if !ok {
		return Applied{}, false
	}
	if !bounds.Allows(oldValue, newValue) {
		return Applied{}, false
	}

	return Applied{Target: patch.Target, OldValue: oldValue, NewValue: newValue}, true
}

func resolveBounds(c *types.PromotionCandidate, policy Policy) (safety.Bounds, bool) {
	for _, tag := range boundPrecedence {
		if !c.HasTag(tag) {
			continue
		}
		if b, ok := policy.Bounds[string(tag)]; ok {
			return b, true
		}
	}
	return safety.Bounds{}, false
}

func autoAppliedTable(doc map[string]any) map[string]any {
	existing, ok := doc[overridesTable].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	table := make(map[string]any, len(existing))
	for k, v := range existing {
		table[k] = v
	}
	return table
}
