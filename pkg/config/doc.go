/*
Package config manages configuration parsing and validation for patchrc.

	             +-------------+
	             |   Config    |
	             | (Settings)  |
	             +------+------+
	                    |
	   +--------+------+-+--------+----------+
	   |        |        |        |          |
	+--+--+  +--+--+  +--+--+  +--+--+  +----+----+
	| YAML |  | HCL |  | JSON|  | TOML|  | .patchrc|
	+------+  +-----+  +-----+  +-----+  +---------+

🎯 Purpose:
- Manages configuration loading and parsing
- Validates configuration values and fills defaults
- Bridges file definitions onto the compiled rule catalog
- Supports multiple config formats behind one interface

🔄 Flow:
1. Reads configuration from file
2. Picks a parser by filename, parses format-specific syntax
3. Validates values: profile, arch, jobs, rule set targeting
4. Hands the validated config to the planner as a catalog selection
   plus compiled custom rule sets

🤝 Interfaces:
- Parser: format-specific parsing, registered at init time
- Config: validated settings plus Selection and CustomRuleSets bridges

📝 Design Philosophy:
The config package is the source of truth for a run. Every format decodes
strictly (unknown fields are errors) so a typo in a profile name or a rule
field fails the run before any file is rewritten. Custom rule sets are
validated structurally here and compiled in CustomRuleSets, which means a
pattern that does not compile is reported with its rule set name instead
of surfacing mid-run.

The `.patchrc` convention has no extension to key a format off, so its
parser tries YAML first and falls back to HCL.

One sharp edge worth knowing: in HCL strings, a group reference like ${1}
must be written $${1}, otherwise HCL treats it as an interpolation.

🔍 Example:

	cfg, err := config.Load(ctx, ".patchrc")
	if err != nil {
		return err
	}

	selection := cfg.Selection()
	custom, err := cfg.CustomRuleSets()
	if err != nil {
		return err
	}
*/
package config
