package types

type DecisionStatus string

const (
	DecisionPending               DecisionStatus = "PENDING"
	DecisionRejectedByPolicy      DecisionStatus = "REJECTED_BY_POLICY"
	DecisionRejectedBySanityCheck DecisionStatus = "REJECTED_BY_SANITY_CHECK"
	DecisionAcceptedForProposal   DecisionStatus = "ACCEPTED_FOR_PROPOSAL"
)

func (s DecisionStatus) Valid() bool {
	switch s {
	case DecisionPending, DecisionRejectedByPolicy, DecisionRejectedBySanityCheck, DecisionAcceptedForProposal:
		return true
	default:
		return false
	}
}

// PromotionDecision is the verdict for one candidate. Reasons is non-empty
// for every non-accepted status; rejection is a first-class outcome, never
// an error.
type PromotionDecision struct {
	Candidate *PromotionCandidate `json:"candidate"`
	Status    DecisionStatus      `json:"status"`
	Reasons   []string            `json:"reasons,omitempty"`
}

func (d PromotionDecision) Accepted() bool {
	return d.Status == DecisionAcceptedForProposal
}
