package candidate

import (
	"strings"

	"github.com/davidahmann/promogate/pkg/types"
)

// classificationTable maps target keywords to tags. Order is fixed and the
// entries are checked in sequence, so a target containing several keywords
// always receives its tags in the same order.
var classificationTable = []struct {
	keyword string
	tag     types.Tag
}{
	{"leverage", types.TagLeverage},
	{"risk", types.TagRisk},
	{"macro", types.TagMacro},
	{"trigger", types.TagTrigger},
}

// ClassifyTags derives governance tags from a dotted config target by
// case-insensitive substring match against the classification table.
func ClassifyTags(target string) []types.Tag {
	lowered := strings.ToLower(target)
	var tags []types.Tag
	for _, entry := range classificationTable {
		if strings.Contains(lowered, entry.keyword) {
			tags = append(tags, entry.tag)
		}
	}
	return tags
}

// Build wraps patches into promotion candidates. Only APPLIED_OFFLINE and
// PROMOTED patches are considered; everything else is silently filtered,
// not an error. EligibleForLive starts false for every candidate; an
// operator approval has to flip it before the decision engine will accept.
func Build(patches []types.ConfigPatch) []*types.PromotionCandidate {
	candidates := make([]*types.PromotionCandidate, 0, len(patches))
	for _, patch := range patches {
		switch patch.Status {
		case types.PatchAppliedOffline, types.PatchPromoted:
		default:
			continue
		}
		candidates = append(candidates, &types.PromotionCandidate{
			Patch:           patch,
			Tags:            ClassifyTags(patch.Target),
			EligibleForLive: false,
		})
	}
	return candidates
}
