// Package engine turns promotion candidates into decisions. The check
// order is fixed: default-deny eligibility first, then config-driven safety
// flags, then a hardcoded sanity rule that no configuration can disable.
package engine

import (
	"fmt"

	"github.com/davidahmann/promogate/internal/safety"
	"github.com/davidahmann/promogate/pkg/types"
)

// hardMaxLeverage is the sanity ceiling for any leverage-tagged target.
// It does not come from configuration; a misconfigured or absent safety
// config cannot lift it.
const hardMaxLeverage = 3.0

// AuditSink receives exactly one record per Decide call.
type AuditSink interface {
	Append(decision types.PromotionDecision, mode types.AutoApplyMode) error
}

type Engine struct {
	cfg   safety.Config
	mode  types.AutoApplyMode
	audit AuditSink
}

// New builds a decision engine. audit may be nil for callers that only
// need the pure decision function.
func New(cfg safety.Config, mode types.AutoApplyMode, audit AuditSink) *Engine {
	return &Engine{cfg: cfg, mode: mode, audit: audit}
}

// Decide runs the safety filter pipeline and the ordered decision checks
// on one candidate. Identical inputs always yield identical decisions; the
// only side effect is the audit append. The returned error is an audit I/O
// failure, never a governance outcome.
func (e *Engine) Decide(c *types.PromotionCandidate) (types.PromotionDecision, error) {
	safety.ApplyFilters(c, e.cfg, e.mode)
	decision := e.evaluate(c)

	if e.audit != nil {
		if err := e.audit.Append(decision, e.mode); err != nil {
			return types.PromotionDecision{}, err
		}
	}
	return decision, nil
}

func (e *Engine) evaluate(c *types.PromotionCandidate) types.PromotionDecision {
	if !c.EligibleForLive {
		return types.PromotionDecision{
			Candidate: c,
			Status:    types.DecisionRejectedByPolicy,
			Reasons:   []string{"not marked eligible_for_live"},
		}
	}

	if c.HasP0Violations() || e.lowConfidenceBlocks(c) {
		reasons := make([]string, 0, len(c.SafetyFlags))
		for _, f := range c.SafetyFlags {
			reasons = append(reasons, string(f))
		}
		return types.PromotionDecision{
			Candidate: c,
			Status:    types.DecisionRejectedByPolicy,
			Reasons:   reasons,
		}
	}

	if reason, fired := sanityCheck(c); fired {
		return types.PromotionDecision{
			Candidate: c,
			Status:    types.DecisionRejectedBySanityCheck,
			Reasons:   []string{reason},
		}
	}

	return types.PromotionDecision{
		Candidate: c,
		Status:    types.DecisionAcceptedForProposal,
	}
}

// lowConfidenceBlocks escalates the soft P1_LOW_CONFIDENCE flag to a hard
// block in bounded_auto mode. In manual_only the flag stays on the
// candidate for reviewers but does not reject.
func (e *Engine) lowConfidenceBlocks(c *types.PromotionCandidate) bool {
	return e.mode == types.ModeBoundedAuto && c.HasFlag(types.FlagLowConfidence)
}

func sanityCheck(c *types.PromotionCandidate) (string, bool) {
	if !c.HasTag(types.TagLeverage) {
		return "", false
	}
	newValue, ok := c.Patch.NumericNewValue()
	if !ok {
		return "", false
	}
	if newValue > hardMaxLeverage {
		return fmt.Sprintf("leverage target %s new_value %v exceeds hard limit %v",
			c.Patch.Target, newValue, hardMaxLeverage), true
	}
	return "", false
}
