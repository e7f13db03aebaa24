package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/davidahmann/promogate/pkg/types"
)

// LoadPatches reads a learning-loop patch batch: a JSON array of
// ConfigPatch objects. Statuses are validated at the boundary so unknown
// strings never reach the pipeline, and generated_at defaults to load time
// when the upstream omitted it.
func LoadPatches(path string, now func() time.Time) ([]types.ConfigPatch, error) {
	// #nosec G304 -- path is operator-provided patches path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patches: %w", err)
	}

	var patches []types.ConfigPatch
	if err := json.Unmarshal(raw, &patches); err != nil {
		return nil, fmt.Errorf("parse patches %s: %w", path, err)
	}

	for i := range patches {
		p := &patches[i]
		if p.ID == "" {
			return nil, fmt.Errorf("patches %s: entry %d has no id", path, i)
		}
		if p.Target == "" {
			return nil, fmt.Errorf("patch %s has no target", p.ID)
		}
		if !p.Status.Valid() {
			return nil, fmt.Errorf("patch %s has unknown status %q", p.ID, p.Status)
		}
		if p.ConfidenceScore != nil && (*p.ConfidenceScore < 0 || *p.ConfidenceScore > 1) {
			return nil, fmt.Errorf("patch %s confidence_score %v outside [0,1]", p.ID, *p.ConfidenceScore)
		}
		if p.GeneratedAt == nil {
			t := now().UTC()
			p.GeneratedAt = &t
		}
	}
	return patches, nil
}
