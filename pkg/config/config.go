// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 RuleDef is one user-defined rewrite rule.
type RuleDef struct {
	Name        string `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Pattern     string `json:"pattern" yaml:"pattern" toml:"pattern" hcl:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement" hcl:"replacement,optional"`
}

// 📦 RuleSetDef is a user-defined rule group plus its targeting. Exactly one
// of Glob and Anchor must be set.
type RuleSetDef struct {
	Name     string    `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Glob     string    `json:"glob,omitempty" yaml:"glob,omitempty" toml:"glob,omitempty" hcl:"glob,optional"`
	Anchor   string    `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty" hcl:"anchor,optional"`
	Roots    []string  `json:"roots,omitempty" yaml:"roots,omitempty" toml:"roots,omitempty" hcl:"roots,optional"`
	Excludes []string  `json:"excludes,omitempty" yaml:"excludes,omitempty" toml:"excludes,omitempty" hcl:"excludes,optional"`
	Rules    []RuleDef `json:"rules" yaml:"rules" toml:"rules" hcl:"rule,block"`
}

// 📚 Config represents the complete run configuration
type Config struct {
	Root     string       `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty" hcl:"root,optional"`
	Profile  string       `json:"profile,omitempty" yaml:"profile,omitempty" toml:"profile,omitempty" hcl:"profile,optional"`
	Arch     string       `json:"arch,omitempty" yaml:"arch,omitempty" toml:"arch,omitempty" hcl:"arch,optional"`
	GPUSpoof *bool        `json:"gpu_spoof,omitempty" yaml:"gpu_spoof,omitempty" toml:"gpu_spoof,omitempty" hcl:"gpu_spoof,optional"`
	DryRun   bool         `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty" hcl:"dry_run,optional"`
	Jobs     int          `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty" hcl:"jobs,optional"`
	Report   string       `json:"report,omitempty" yaml:"report,omitempty" toml:"report,omitempty" hcl:"report,optional"`
	Excludes []string     `json:"excludes,omitempty" yaml:"excludes,omitempty" toml:"excludes,omitempty" hcl:"excludes,optional"`
	RuleSets []RuleSetDef `json:"rulesets,omitempty" yaml:"rulesets,omitempty" toml:"rulesets,omitempty" hcl:"ruleset,block"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)

	if cfg.Profile == "" {
		cfg.Profile = string(rules.ProfileStandard)
	}
	if _, err := rules.ParseProfile(cfg.Profile); err != nil {
		return err
	}

	if cfg.Arch == "" {
		cfg.Arch = string(rules.ArchX8664)
	}
	if _, err := rules.ParseArch(cfg.Arch); err != nil {
		return err
	}

	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must be zero or positive, got %d", cfg.Jobs)
	}

	builtin := make(map[string]bool)
	for _, set := range rules.All() {
		builtin[set.Name] = true
	}

	seen := make(map[string]bool, len(cfg.RuleSets))
	for _, def := range cfg.RuleSets {
		if def.Name == "" {
			return errors.Errorf("rule set name is required")
		}
		if builtin[def.Name] {
			return errors.Errorf("rule set %q collides with a built-in group", def.Name)
		}
		if seen[def.Name] {
			return errors.Errorf("duplicate rule set %q", def.Name)
		}
		seen[def.Name] = true

		if def.Glob == "" && def.Anchor == "" {
			return errors.Errorf("rule set %q needs a glob or an anchor", def.Name)
		}
		if def.Glob != "" && def.Anchor != "" {
			return errors.Errorf("rule set %q: glob and anchor are mutually exclusive", def.Name)
		}
		if def.Anchor == "" && len(def.Roots) > 0 {
			return errors.Errorf("rule set %q: roots require an anchor", def.Name)
		}
		if len(def.Rules) == 0 {
			return errors.Errorf("rule set %q has no rules", def.Name)
		}
		for _, rd := range def.Rules {
			if rd.Name == "" {
				return errors.Errorf("rule set %q: rule name is required", def.Name)
			}
			if rd.Pattern == "" {
				return errors.Errorf("rule %s/%s: pattern is required", def.Name, rd.Name)
			}
		}
	}

	return nil
}

// GPUSpoofEnabled reports the spoof setting, defaulting to on.
func (cfg *Config) GPUSpoofEnabled() bool {
	return cfg.GPUSpoof == nil || *cfg.GPUSpoof
}

// 🎯 Selection maps the config onto a catalog selection.
func (cfg *Config) Selection() rules.Selection {
	return rules.Selection{
		Profile:  rules.Profile(cfg.Profile),
		Arch:     rules.Arch(cfg.Arch),
		GPUSpoof: cfg.GPUSpoofEnabled(),
	}
}

// 🏭 CustomRuleSets compiles the user-defined rule sets. A pattern that
// fails to compile is reported here, before any file is touched.
func (cfg *Config) CustomRuleSets() ([]*rules.RuleSet, error) {
	var sets []*rules.RuleSet
	for _, def := range cfg.RuleSets {
		built := make([]rules.Rule, 0, len(def.Rules))
		for _, rd := range def.Rules {
			r, err := rules.NewRule(rd.Name, rd.Pattern, rd.Replacement)
			if err != nil {
				return nil, errors.Errorf("rule set %q: %w", def.Name, err)
			}
			built = append(built, r)
		}

		excludes := def.Excludes
		if len(excludes) == 0 {
			excludes = rules.DefaultExcludes()
		}

		set, err := rules.NewRuleSet(def.Name, target.Policy{
			Glob:        def.Glob,
			AnchorName:  def.Anchor,
			SearchRoots: def.Roots,
			Excludes:    excludes,
		}, built)
		if err != nil {
			return nil, errors.Errorf("building rule set %q: %w", def.Name, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s profile=%s arch=%s spoof=%v rulesets=%d",
		cfg.Root, cfg.Profile, cfg.Arch, cfg.GPUSpoofEnabled(), len(cfg.RuleSets))
}
