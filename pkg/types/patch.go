package types

import "time"

type PatchStatus string

const (
	PatchProposed       PatchStatus = "PROPOSED"
	PatchAppliedOffline PatchStatus = "APPLIED_OFFLINE"
	PatchPromoted       PatchStatus = "PROMOTED"
	PatchRejected       PatchStatus = "REJECTED"
	PatchRetired        PatchStatus = "RETIRED"
)

func (s PatchStatus) Valid() bool {
	switch s {
	case PatchProposed, PatchAppliedOffline, PatchPromoted, PatchRejected, PatchRetired:
		return true
	default:
		return false
	}
}

// ConfigPatch is one proposed atomic change to a configuration parameter.
// Patches are produced by the learning loop; this engine only reads them.
type ConfigPatch struct {
	ID                 string         `json:"id"`
	Target             string         `json:"target"`
	OldValue           any            `json:"old_value"`
	NewValue           any            `json:"new_value"`
	Status             PatchStatus    `json:"status"`
	GeneratedAt        *time.Time     `json:"generated_at,omitempty"`
	AppliedAt          *time.Time     `json:"applied_at,omitempty"`
	PromotedAt         *time.Time     `json:"promoted_at,omitempty"`
	Reason             string         `json:"reason,omitempty"`
	SourceExperimentID string         `json:"source_experiment_id,omitempty"`
	ConfidenceScore    *float64       `json:"confidence_score,omitempty"`
	Meta               map[string]any `json:"meta,omitempty"`
}

// NumericNewValue returns the patch new_value as a float64 when it is
// numeric. JSON decoding yields float64 for all numbers; int covers
// patches constructed in code.
func (p ConfigPatch) NumericNewValue() (float64, bool) {
	return asFloat(p.NewValue)
}

func (p ConfigPatch) NumericOldValue() (float64, bool) {
	return asFloat(p.OldValue)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
