// Package proposal batches accepted decisions and writes their on-disk
// artifacts.
package proposal

import (
	"fmt"
	"time"

	"github.com/davidahmann/promogate/pkg/types"
)

const idPrefix = "promo"

// Builder assigns proposal IDs within one run. IDs combine the run's UTC
// timestamp with a per-run sequence, so a single run can never mint the
// same ID twice.
type Builder struct {
	now func() time.Time
	seq int
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build collects all accepted decisions of one pass into at most one
// proposal (single batch per run). Zero accepted decisions yields an empty
// slice; an empty proposal is never created.
func (b *Builder) Build(decisions []types.PromotionDecision, runID string) []types.PromotionProposal {
	var accepted []types.PromotionDecision
	for _, d := range decisions {
		if d.Accepted() {
			accepted = append(accepted, d)
		}
	}
	if len(accepted) == 0 {
		return nil
	}

	now := b.now().UTC()
	b.seq++

	return []types.PromotionProposal{{
		ProposalID:  fmt.Sprintf("%s_%sZ_%03d", idPrefix, now.Format("20060102T150405"), b.seq),
		Title:       fmt.Sprintf("Promotion proposal (%d patches)", len(accepted)),
		Description: "Configuration patches accepted for live promotion, pending operator review.",
		Decisions:   accepted,
		Meta: types.ProposalMeta{
			GeneratedAt:    now.Format(time.RFC3339),
			CandidateCount: len(accepted),
			RunID:          runID,
		},
	}}
}
