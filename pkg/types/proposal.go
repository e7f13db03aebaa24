package types

// ProposalMeta carries provenance for one promotion proposal.
type ProposalMeta struct {
	GeneratedAt    string `json:"generated_at"`
	CandidateCount int    `json:"candidate_count"`
	RunID          string `json:"run_id,omitempty"`
}

// PromotionProposal is a batch of accepted decisions from one run. A
// proposal is never empty: zero accepted decisions yields zero proposals.
type PromotionProposal struct {
	ProposalID  string              `json:"proposal_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Decisions   []PromotionDecision `json:"decisions"`
	Meta        ProposalMeta        `json:"meta"`
	OutputDir   string              `json:"output_dir,omitempty"`
}
