package proposal

import (
	"fmt"
	"strings"

	"github.com/davidahmann/promogate/pkg/types"
)

// renderChecklist produces OPERATOR_CHECKLIST.md: one section per patch
// with the values an operator needs to verify by hand. A P0 flag on any
// listed decision gets a warning banner; under correct operation no
// P0-flagged decision can reach a proposal, and the banner covers the case
// where one did anyway.
func renderChecklist(p *types.PromotionProposal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Operator checklist: %s\n\n", p.ProposalID)
	fmt.Fprintf(&b, "Generated at %s, %d patch(es).\n\n", p.Meta.GeneratedAt, len(p.Decisions))

	if anyP0(p) {
		b.WriteString("> **WARNING: one or more listed decisions carry a P0 safety flag.**\n")
		b.WriteString("> A P0-flagged decision should never be accepted; do not apply this\n")
		b.WriteString("> proposal before investigating how it was produced.\n\n")
	}

	for i, d := range p.Decisions {
		patch := d.Candidate.Patch
		fmt.Fprintf(&b, "## %d. `%s`\n\n", i+1, patch.Target)
		fmt.Fprintf(&b, "- [ ] patch id: `%s`\n", patch.ID)
		fmt.Fprintf(&b, "- [ ] old value: `%v`\n", patch.OldValue)
		fmt.Fprintf(&b, "- [ ] new value: `%v`\n", patch.NewValue)
		fmt.Fprintf(&b, "- [ ] confidence: %s\n", confidenceString(patch.ConfidenceScore))
		fmt.Fprintf(&b, "- [ ] tags: %s\n", joinTags(d.Candidate.Tags))
		fmt.Fprintf(&b, "- [ ] safety flags: %s\n", joinFlags(d.Candidate.SafetyFlags))
		if patch.Reason != "" {
			fmt.Fprintf(&b, "- [ ] reason: %s\n", patch.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func anyP0(p *types.PromotionProposal) bool {
	for _, d := range p.Decisions {
		if d.Candidate.HasP0Violations() {
			return true
		}
	}
	return false
}

func confidenceString(score *float64) string {
	if score == nil {
		return "(none)"
	}
	return fmt.Sprintf("%.2f", *score)
}

func joinTags(tags []types.Tag) string {
	if len(tags) == 0 {
		return "(none)"
	}
	return strings.Join(tagStrings(tags), ", ")
}

func joinFlags(flags []types.SafetyFlag) string {
	if len(flags) == 0 {
		return "(none)"
	}
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, string(f))
	}
	return strings.Join(out, ", ")
}
