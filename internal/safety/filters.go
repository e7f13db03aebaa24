package safety

import (
	"fmt"

	"github.com/davidahmann/promogate/pkg/types"
)

// ApplyFilters runs the safety filter pipeline over one candidate,
// appending severity-prefixed flags. Ordering is fixed: blacklist, bounds,
// confidence guard, global lock. The candidate is the only thing mutated.
func ApplyFilters(c *types.PromotionCandidate, cfg Config, mode types.AutoApplyMode) {
	applyBlacklist(c, cfg)
	applyBounds(c, cfg)

	if mode == types.ModeBoundedAuto {
		applyConfidenceGuard(c, cfg)
		if cfg.GlobalPromotionLock {
			c.SafetyFlags = append(c.SafetyFlags, types.FlagGlobalLock)
		}
	}
}

func applyBlacklist(c *types.PromotionCandidate, cfg Config) {
	if cfg.Blacklist.HasTarget(c.Patch.Target) {
		c.SafetyFlags = append(c.SafetyFlags, types.FlagBlacklistTarget)
	}
	for _, tag := range c.Tags {
		if cfg.Blacklist.HasTag(tag) {
			c.SafetyFlags = append(c.SafetyFlags, types.FlagBlacklistTag)
			break
		}
	}
}

// applyBounds checks every candidate tag that has configured bounds. A
// non-numeric value under a bounded tag cannot be verified and counts as a
// violation. One flag is appended regardless of how many tags violate; the
// per-tag detail lands in Notes.
func applyBounds(c *types.PromotionCandidate, cfg Config) {
	violated := false
	for _, tag := range c.Tags {
		bounds, ok := cfg.BoundsForTag(tag)
		if !ok {
			continue
		}

		newValue, newOK := c.Patch.NumericNewValue()
		oldValue, oldOK := c.Patch.NumericOldValue()
		if !newOK || !oldOK {
			violated = true
			c.Notes = append(c.Notes, fmt.Sprintf("bounds check for tag %q: non-numeric value cannot be verified", tag))
			continue
		}
		if !bounds.Allows(oldValue, newValue) {
			violated = true
			c.Notes = append(c.Notes, fmt.Sprintf(
				"bounds violation for tag %q: new_value %v outside [%v, %v] or step over %v",
				tag, newValue, bounds.Min, bounds.Max, bounds.MaxStep))
		}
	}
	if violated {
		c.SafetyFlags = append(c.SafetyFlags, types.FlagBoundsViolation)
	}
}

// applyConfidenceGuard only runs in bounded_auto mode. A missing confidence
// score fails the guard: automated application never gets a permissive
// default.
func applyConfidenceGuard(c *types.PromotionCandidate, cfg Config) {
	score := c.Patch.ConfidenceScore
	if score == nil || *score < cfg.MinConfidenceForAutoApply {
		c.SafetyFlags = append(c.SafetyFlags, types.FlagLowConfidence)
	}
}
