package candidate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidahmann/promogate/pkg/types"
)

// Approvals is the operator-maintained list of patches explicitly marked
// eligible for live promotion. Eligibility is default-deny everywhere else;
// this file is the only place it gets flipped.
type Approvals struct {
	Eligible []Approval `yaml:"eligible"`
}

type Approval struct {
	PatchID string `yaml:"patch_id"`
	Note    string `yaml:"note"`
}

// LoadApprovals reads the operator approvals file. A missing path means no
// approvals, which is a valid (fully rejecting) state.
func LoadApprovals(path string) (Approvals, error) {
	// #nosec G304 -- path is operator-provided approvals path.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Approvals{}, nil
		}
		return Approvals{}, fmt.Errorf("read approvals: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var a Approvals
	if err := yaml.Unmarshal([]byte(expanded), &a); err != nil {
		return Approvals{}, fmt.Errorf("parse approvals %s: %w", path, err)
	}
	for i, e := range a.Eligible {
		if e.PatchID == "" {
			return Approvals{}, fmt.Errorf("approvals %s: entry %d has no patch_id", path, i)
		}
	}
	return a, nil
}

// ApplyApprovals flips EligibleForLive on candidates whose patch ID appears
// in the approvals list. IDs with no matching candidate are ignored.
func ApplyApprovals(candidates []*types.PromotionCandidate, approvals Approvals) {
	byID := make(map[string]Approval, len(approvals.Eligible))
	for _, e := range approvals.Eligible {
		byID[e.PatchID] = e
	}

	for _, c := range candidates {
		approval, ok := byID[c.Patch.ID]
		if !ok {
			continue
		}
		c.EligibleForLive = true
		if approval.Note != "" {
			c.Notes = append(c.Notes, "operator approval: "+approval.Note)
		}
	}
}
