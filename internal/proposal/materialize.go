package proposal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/davidahmann/promogate/internal/canonical"
	"github.com/davidahmann/promogate/pkg/types"
)

const (
	metaFile      = "proposal_meta.json"
	patchesFile   = "config_patches.json"
	checklistFile = "OPERATOR_CHECKLIST.md"
)

// Materialize writes one proposal's artifacts under baseDir. The proposal
// directory is created with os.Mkdir so an existing directory is an error,
// never an overwrite; individual files are written atomically. On success
// the proposal's OutputDir is set.
func Materialize(p *types.PromotionProposal, baseDir string) error {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return fmt.Errorf("create proposals dir: %w", err)
	}

	dir := filepath.Join(baseDir, p.ProposalID)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return fmt.Errorf("create proposal dir %s: %w", dir, err)
	}

	patches, err := canonical.EncodeIndent(patchesView(p))
	if err != nil {
		return fmt.Errorf("encode %s: %w", patchesFile, err)
	}
	checklist := []byte(renderChecklist(p))

	meta, err := canonical.EncodeIndent(metaView(p, patches, checklist))
	if err != nil {
		return fmt.Errorf("encode %s: %w", metaFile, err)
	}

	for _, artifact := range []struct {
		name string
		data []byte
	}{
		{patchesFile, patches},
		{checklistFile, checklist},
		{metaFile, meta},
	} {
		if err := writeFileAtomic(dir, artifact.name, artifact.data); err != nil {
			return fmt.Errorf("write %s: %w", artifact.name, err)
		}
	}

	p.OutputDir = dir
	return nil
}

func metaView(p *types.PromotionProposal, patches, checklist []byte) map[string]any {
	return map[string]any{
		"proposal_id":     p.ProposalID,
		"title":           p.Title,
		"description":     p.Description,
		"generated_at":    p.Meta.GeneratedAt,
		"candidate_count": p.Meta.CandidateCount,
		"run_id":          p.Meta.RunID,
		"decision_count":  len(p.Decisions),
		"artifacts": map[string]any{
			patchesFile:   canonical.DigestWithPrefix(patches),
			checklistFile: canonical.DigestWithPrefix(checklist),
		},
	}
}

func patchesView(p *types.PromotionProposal) []any {
	entries := make([]any, 0, len(p.Decisions))
	for _, d := range p.Decisions {
		entries = append(entries, map[string]any{
			"decision_status":  string(d.Status),
			"decision_reasons": stringSlice(d.Reasons),
			"candidate_tags":   tagStrings(d.Candidate.Tags),
			"patch":            patchView(d.Candidate.Patch),
		})
	}
	return entries
}

func patchView(patch types.ConfigPatch) map[string]any {
	view := map[string]any{
		"id":                   patch.ID,
		"target":               patch.Target,
		"old_value":            patch.OldValue,
		"new_value":            patch.NewValue,
		"status":               string(patch.Status),
		"reason":               patch.Reason,
		"source_experiment_id": patch.SourceExperimentID,
		"generated_at":         timeString(patch.GeneratedAt),
		"applied_at":           timeString(patch.AppliedAt),
		"promoted_at":          timeString(patch.PromotedAt),
		"meta":                 patch.Meta,
	}
	if patch.ConfidenceScore != nil {
		view["confidence_score"] = *patch.ConfidenceScore
	}
	return view
}

func timeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func tagStrings(tags []types.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}

func stringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// writeFileAtomic writes data to a temp file in dir and renames it into
// place, so a crash never leaves a partially written artifact.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, name))
}
