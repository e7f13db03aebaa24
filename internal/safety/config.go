package safety

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/davidahmann/promogate/pkg/types"
)

const DefaultMinConfidence = 0.80

// Bounds constrains one tag's numeric changes: the new value must land in
// [Min, Max] and may not move more than MaxStep from the old value.
type Bounds struct {
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
	MaxStep float64 `toml:"max_step"`
}

func (b Bounds) Allows(oldValue, newValue float64) bool {
	if newValue < b.Min || newValue > b.Max {
		return false
	}
	step := newValue - oldValue
	if step < 0 {
		step = -step
	}
	return step <= b.MaxStep
}

type Blacklist struct {
	Targets []string `toml:"targets"`
	Tags    []string `toml:"tags"`
}

func (b Blacklist) HasTarget(target string) bool {
	for _, t := range b.Targets {
		if t == target {
			return true
		}
	}
	return false
}

func (b Blacklist) HasTag(tag types.Tag) bool {
	for _, t := range b.Tags {
		if t == string(tag) {
			return true
		}
	}
	return false
}

// Config is the loaded promotion safety policy. The zero value is a valid
// permissive policy (no blacklist, no bounds, lock off) so the decision
// engine's hardcoded sanity rule still applies with no config at all.
type Config struct {
	Blacklist                 Blacklist         `toml:"blacklist"`
	Bounds                    map[string]Bounds `toml:"bounds"`
	GlobalPromotionLock       bool              `toml:"global_promotion_lock"`
	AuditLogPath              string            `toml:"audit_log_path"`
	MinConfidenceForAutoApply float64           `toml:"min_confidence_for_auto_apply"`
}

// BoundsForTag returns the configured bounds for a tag, if any.
func (c Config) BoundsForTag(tag types.Tag) (Bounds, bool) {
	b, ok := c.Bounds[string(tag)]
	return b, ok
}

// Load reads and validates a safety config. Any load failure is fatal to
// the caller; a partial config is never returned.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read safety config: %w", err)
	}

	cfg := Config{MinConfidenceForAutoApply: DefaultMinConfidence}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse safety config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("safety config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for tag, b := range c.Bounds {
		if b.Min > b.Max {
			return fmt.Errorf("bounds.%s: min %v > max %v", tag, b.Min, b.Max)
		}
		if b.MaxStep < 0 {
			return fmt.Errorf("bounds.%s: max_step must be >= 0", tag)
		}
	}
	if c.MinConfidenceForAutoApply < 0 || c.MinConfidenceForAutoApply > 1 {
		return fmt.Errorf("min_confidence_for_auto_apply must be in [0,1], got %v", c.MinConfidenceForAutoApply)
	}
	if c.AuditLogPath == "" {
		return fmt.Errorf("audit_log_path is required")
	}
	return nil
}
