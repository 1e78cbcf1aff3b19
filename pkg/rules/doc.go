/*
Package rules defines the rewrite catalog applied to vkd3d-proton sources.

	+-----------+     +-----------+     +-------------+
	|   Rule    |────▶|  RuleSet  |────▶|  Selection  |
	| (pattern) |     |  (group)  |     |  (profile)  |
	+-----------+     +-----------+     +-------------+

🎯 Purpose:
- Compiles patterns once, at construction, so a bad rule fails fast
- Groups rules into named sets with a shared targeting policy
- Ships the built-in vkd3d-proton catalog (capabilities, performance,
  GPU identity, CPU gates, debug flags)
- Selects groups per profile/arch via Selection.RuleSets

🔄 Flow:
1. NewRule compiles `(?ms)` + pattern and vets the replacement template
2. NewRuleSet groups rules, rejecting duplicate names
3. Selection.RuleSets picks catalog groups for the run
4. Validate warns about non-portable replacement tokens

📝 Design Philosophy:
Every shipped rule is idempotent. Either its pattern cannot match its own
output (enumerated from-values like TIER_[12], marker comments on injected
struct fields), or it rewrites a matched site to byte-identical text so a
second run changes nothing on disk. Matching is always multiline with dot
matching newline; counting happens before substitution and is identical in
dry runs.

🔍 Example:

	sel := rules.Selection{Profile: rules.ProfileUE5, Arch: rules.ArchX8664, GPUSpoof: true}
	sets, err := sel.RuleSets()
*/
package rules
