package types

import "fmt"

// AutoApplyMode controls how far a run is allowed to go: disabled runs
// produce decisions only, manual_only adds proposal artifacts for operator
// review, bounded_auto additionally writes in-bounds numeric changes to the
// live override file.
type AutoApplyMode string

const (
	ModeDisabled    AutoApplyMode = "disabled"
	ModeManualOnly  AutoApplyMode = "manual_only"
	ModeBoundedAuto AutoApplyMode = "bounded_auto"
)

func ParseAutoApplyMode(s string) (AutoApplyMode, error) {
	switch AutoApplyMode(s) {
	case ModeDisabled, ModeManualOnly, ModeBoundedAuto:
		return AutoApplyMode(s), nil
	default:
		return "", fmt.Errorf("unknown auto-apply mode: %q", s)
	}
}
