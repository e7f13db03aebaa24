package types

import "strings"

type Tag string

const (
	TagLeverage Tag = "leverage"
	TagRisk     Tag = "risk"
	TagMacro    Tag = "macro"
	TagTrigger  Tag = "trigger"
)

type SafetyFlag string

const (
	FlagBlacklistTarget SafetyFlag = "P0_BLACKLIST_TARGET"
	FlagBlacklistTag    SafetyFlag = "P0_BLACKLIST_TAG"
	FlagBoundsViolation SafetyFlag = "P0_BOUNDS_VIOLATION"
	FlagGlobalLock      SafetyFlag = "P0_GLOBAL_LOCK"
	FlagLowConfidence   SafetyFlag = "P1_LOW_CONFIDENCE"
)

// IsP0 reports whether the flag is a hard block rather than a soft warning.
func (f SafetyFlag) IsP0() bool {
	return strings.HasPrefix(string(f), "P0_")
}

// PromotionCandidate wraps one ConfigPatch with governance metadata.
// EligibleForLive defaults to false; an operator or upstream policy must
// flip it explicitly before the candidate can ever be accepted.
type PromotionCandidate struct {
	Patch           ConfigPatch  `json:"patch"`
	Tags            []Tag        `json:"tags"`
	EligibleForLive bool         `json:"eligible_for_live"`
	Notes           []string     `json:"notes,omitempty"`
	SafetyFlags     []SafetyFlag `json:"safety_flags,omitempty"`
}

func (c *PromotionCandidate) HasTag(tag Tag) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (c *PromotionCandidate) HasP0Violations() bool {
	for _, f := range c.SafetyFlags {
		if f.IsP0() {
			return true
		}
	}
	return false
}

func (c *PromotionCandidate) HasFlag(flag SafetyFlag) bool {
	for _, f := range c.SafetyFlags {
		if f == flag {
			return true
		}
	}
	return false
}
