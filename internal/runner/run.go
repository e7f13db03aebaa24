// Package runner executes one batch promotion pass: patches in, decisions
// audited, proposals materialized, bounded auto-apply at the end.
package runner

import (
	"fmt"
	"time"

	"github.com/davidahmann/promogate/internal/audit"
	"github.com/davidahmann/promogate/internal/autoapply"
	"github.com/davidahmann/promogate/internal/candidate"
	"github.com/davidahmann/promogate/internal/engine"
	"github.com/davidahmann/promogate/internal/proposal"
	"github.com/davidahmann/promogate/internal/safety"
	"github.com/davidahmann/promogate/pkg/types"
)

// Summary is what one pass produced, for the front-end to print.
type Summary struct {
	RunID          string
	Considered     int
	Accepted       int
	Rejected       int
	ProposalDirs   []string
	AppliedTargets []string
}

// Run executes one promotion pass from a runner config. Governance
// rejections are part of a successful run; only I/O and configuration
// failures return errors.
func Run(cfg Config) (Summary, error) {
	mode, err := types.ParseAutoApplyMode(cfg.Mode)
	if err != nil {
		return Summary{}, err
	}

	safetyCfg, err := safety.Load(cfg.SafetyConfigPath)
	if err != nil {
		return Summary{}, err
	}

	patches, err := LoadPatches(cfg.PatchesPath, time.Now)
	if err != nil {
		return Summary{}, err
	}

	candidates := candidate.Build(patches)
	if cfg.ApprovalsPath != "" {
		approvals, err := candidate.LoadApprovals(cfg.ApprovalsPath)
		if err != nil {
			return Summary{}, err
		}
		candidate.ApplyApprovals(candidates, approvals)
	}

	logger := audit.NewLogger(safetyCfg.AuditLogPath)
	eng := engine.New(safetyCfg, mode, logger)

	summary := Summary{RunID: logger.RunID(), Considered: len(candidates)}

	decisions := make([]types.PromotionDecision, 0, len(candidates))
	for _, c := range candidates {
		decision, err := eng.Decide(c)
		if err != nil {
			return Summary{}, fmt.Errorf("decide %s: %w", c.Patch.ID, err)
		}
		decisions = append(decisions, decision)
		if decision.Accepted() {
			summary.Accepted++
		} else {
			summary.Rejected++
		}
	}

	proposals := proposal.NewBuilder().Build(decisions, logger.RunID())
	for i := range proposals {
		if err := proposal.Materialize(&proposals[i], cfg.ProposalsDir); err != nil {
			return Summary{}, err
		}
		summary.ProposalDirs = append(summary.ProposalDirs, proposals[i].OutputDir)
	}

	applied, err := autoapply.Apply(proposals, autoapply.PolicyFromConfig(mode, safetyCfg), cfg.LiveOverridesPath)
	if err != nil {
		return Summary{}, err
	}
	for _, a := range applied {
		summary.AppliedTargets = append(summary.AppliedTargets, a.Target)
	}

	return summary, nil
}
