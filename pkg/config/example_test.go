package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/patchrc/pkg/config"
)

func ExampleLoad_yaml() {
	ctx := context.Background()
	// Create a temporary YAML config file
	configYAML := `
root: ./vkd3d-proton
profile: ue5
gpu_spoof: false

rulesets:
  - name: team-fixes
    glob: "**/*.c"
    rules:
      - name: fix_typo
        pattern: teh
        replacement: the
`

	tmpDir, err := os.MkdirTemp("", "patchrc-example")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	// Load and validate the config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	// Print some config details
	fmt.Printf("Loaded: %s\n", cfg)
	fmt.Printf("First rule set: %s (%s)\n", cfg.RuleSets[0].Name, cfg.RuleSets[0].Glob)

	// Output:
	// Loaded: vkd3d-proton profile=ue5 arch=x86_64 spoof=false rulesets=1
	// First rule set: team-fixes (**/*.c)
}

func ExampleLoad_hcl() {
	ctx := context.Background()
	// Create a temporary HCL config file. Note the $${1} escape: a literal
	// ${1} group reference would otherwise be an HCL interpolation.
	configHCL := `
root = "./vkd3d-proton"
profile = "maximum"
arch = "arm64ec"

ruleset "device-only" {
  anchor = "device.c"
  roots  = ["libs/vkd3d"]

  rule "force_tier" {
    pattern     = "(Tier\\s*=\\s*)[^;]+;"
    replacement = "$${1}TIER_3;"
  }
}
`

	tmpDir, err := os.MkdirTemp("", "patchrc-example")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.hcl")
	if err := os.WriteFile(configPath, []byte(configHCL), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	// Load and validate the config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	// Print some config details
	fmt.Printf("Loaded: %s\n", cfg)
	fmt.Printf("First rule set: %s (anchor %s)\n", cfg.RuleSets[0].Name, cfg.RuleSets[0].Anchor)
	fmt.Printf("Replacement: %s\n", cfg.RuleSets[0].Rules[0].Replacement)

	// Output:
	// Loaded: vkd3d-proton profile=maximum arch=arm64ec spoof=true rulesets=1
	// First rule set: device-only (anchor device.c)
	// Replacement: ${1}TIER_3;
}

func ExampleConfig_Validate() {
	// Create an invalid config
	cfg := &config.Config{
		RuleSets: []config.RuleSetDef{
			{
				Name: "custom-a",
				Glob: "*.c",
			},
		},
	}

	// Try to validate
	err := cfg.Validate()
	fmt.Printf("Validation error: %v\n", err)

	// Fix the config
	cfg.RuleSets[0].Rules = []config.RuleDef{
		{Name: "fix_typo", Pattern: "teh", Replacement: "the"},
	}

	// Validate again
	err = cfg.Validate()
	fmt.Printf("Config is valid: %v\n", err == nil)

	// Output:
	// Validation error: rule set "custom-a" has no rules
	// Config is valid: true
}
