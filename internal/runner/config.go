package runner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidahmann/promogate/pkg/types"
)

// Config wires one promotion pass: where to find patches and policy, where
// artifacts go, and how far the run may reach (mode).
type Config struct {
	SafetyConfigPath  string `yaml:"safety_config_path"`
	PatchesPath       string `yaml:"patches_path"`
	ApprovalsPath     string `yaml:"approvals_path"`
	ProposalsDir      string `yaml:"proposals_dir"`
	LiveOverridesPath string `yaml:"live_overrides_path"`
	Mode              string `yaml:"mode"`
}

func LoadConfig(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read runner config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse runner config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.SafetyConfigPath == "" {
		return fmt.Errorf("safety_config_path is required")
	}
	if c.PatchesPath == "" {
		return fmt.Errorf("patches_path is required")
	}
	if c.ProposalsDir == "" {
		return fmt.Errorf("proposals_dir is required")
	}
	if _, err := types.ParseAutoApplyMode(c.Mode); err != nil {
		return err
	}
	if c.Mode == string(types.ModeBoundedAuto) && c.LiveOverridesPath == "" {
		return fmt.Errorf("live_overrides_path is required when mode is bounded_auto")
	}
	return nil
}
