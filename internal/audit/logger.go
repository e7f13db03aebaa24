// Package audit keeps the append-only record of every promotion decision
// ever made. The log is JSON Lines, one object per decision; it is never
// truncated or rewritten.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidahmann/promogate/pkg/types"
)

// Record is one audit line. Every decision produces exactly one, accepted
// or not.
type Record struct {
	CandidateID    string               `json:"candidate_id"`
	Target         string               `json:"target"`
	DecisionStatus types.DecisionStatus `json:"decision_status"`
	Reasons        []string             `json:"reasons"`
	SafetyFlags    []types.SafetyFlag   `json:"safety_flags"`
	Mode           types.AutoApplyMode  `json:"mode"`
	TimestampISO   string               `json:"timestamp_iso"`
	RunID          string               `json:"run_id"`
}

type Logger struct {
	mu    sync.Mutex
	path  string
	runID string
	now   func() time.Time
}

// NewLogger creates a logger for one promotion run. Every record it writes
// carries the same run ID so a run's decisions can be correlated later.
func NewLogger(path string) *Logger {
	return &Logger{
		path:  path,
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

func (l *Logger) RunID() string {
	return l.runID
}

// Append writes one decision record. The file is opened O_APPEND per write
// so the log survives the process without holding a descriptor, and a write
// failure is fatal to the run rather than a silent gap in the trail.
func (l *Logger) Append(decision types.PromotionDecision, mode types.AutoApplyMode) error {
	c := decision.Candidate
	rec := Record{
		CandidateID:    c.Patch.ID,
		Target:         c.Patch.Target,
		DecisionStatus: decision.Status,
		Reasons:        decision.Reasons,
		SafetyFlags:    c.SafetyFlags,
		Mode:           mode,
		TimestampISO:   l.now().UTC().Format(time.RFC3339),
		RunID:          l.runID,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	// #nosec G304 -- path comes from validated safety config.
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
