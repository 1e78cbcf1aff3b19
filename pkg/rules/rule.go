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

package rules

import (
	"regexp"
	"strconv"

	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

// 📝 Rule is one immutable pattern/replacement/name triple. The pattern is
// compiled once at construction; matching is multiline with dot matching
// newlines, so a replacement block may span lines.
type Rule struct {
	Name        string
	Pattern     string
	Replacement string

	re          *regexp.Regexp
	templateErr error // malformed back-reference, surfaced per application
}

// 🏭 NewRule compiles a rule. A pattern that fails to compile is a
// configuration error, raised here rather than per file. A malformed
// replacement template is deliberately NOT an error here: it degrades to a
// per-application error so one bad template only skips its own rule.
func NewRule(name, pattern, replacement string) (Rule, error) {
	if name == "" {
		return Rule{}, errors.Errorf("rule name is required")
	}
	if pattern == "" {
		return Rule{}, errors.Errorf("rule %q: pattern is required", name)
	}

	re, err := regexp.Compile("(?ms)" + pattern)
	if err != nil {
		return Rule{}, errors.Errorf("compiling pattern for rule %q: %w", name, err)
	}

	rule := Rule{
		Name:        name,
		Pattern:     pattern,
		Replacement: replacement,
		re:          re,
	}
	if terr := checkTemplate(re, replacement); terr != nil {
		rule.templateErr = errors.Errorf("rule %q: %w", name, terr)
	}
	return rule, nil
}

// 🔄 Apply returns the rewritten content and the number of non-overlapping
// matches found. The count is identical in dry-run mode; only the
// substitution is withheld, so the returned content equals the input then.
func (r Rule) Apply(content string, dryRun bool) (string, int, error) {
	if r.re == nil {
		return content, 0, errors.Errorf("rule %q was not built with NewRule", r.Name)
	}
	if r.templateErr != nil {
		return content, 0, r.templateErr
	}

	count := len(r.re.FindAllStringIndex(content, -1))
	if count == 0 || dryRun {
		return content, count, nil
	}
	return r.re.ReplaceAllString(content, r.Replacement), count, nil
}

// 📦 RuleSet is a named, ordered group of rules applied together in one file
// pass, plus the targeting policy that picks its files. Later rules in the
// set see the output of earlier ones within the same pass.
type RuleSet struct {
	Name   string
	Rules  []Rule
	Target target.Policy
}

// 🏭 NewRuleSet builds a rule set, enforcing a non-empty name and rule-name
// uniqueness within the set.
func NewRuleSet(name string, policy target.Policy, ruleList []Rule) (*RuleSet, error) {
	if name == "" {
		return nil, errors.Errorf("rule set name is required")
	}
	seen := make(map[string]bool, len(ruleList))
	for _, r := range ruleList {
		if seen[r.Name] {
			return nil, errors.Errorf("duplicate rule name %q in set %q", r.Name, name)
		}
		seen[r.Name] = true
	}
	return &RuleSet{Name: name, Rules: ruleList, Target: policy}, nil
}

// Merge flattens several rule sets into one composite set, preserving group
// order. Rule names must stay unique across the merged groups: a collision
// would make two groups fight over the same change record.
func Merge(name string, sets ...*RuleSet) (*RuleSet, error) {
	var merged []Rule
	for _, s := range sets {
		merged = append(merged, s.Rules...)
	}
	return NewRuleSet(name, target.Policy{}, merged)
}

// checkTemplate verifies every $-reference in a replacement template against
// the pattern's capture groups. Go's Expand silently resolves unknown groups
// to the empty string, which would corrupt output instead of failing, so the
// engine enforces strict templates: $N within range, $name declared, $$ for
// a literal dollar.
func checkTemplate(re *regexp.Regexp, template string) error {
	names := re.SubexpNames()

	i := 0
	for i < len(template) {
		if template[i] != '$' {
			i++
			continue
		}
		if i+1 >= len(template) {
			return errors.Errorf("dangling $ at end of replacement")
		}
		if template[i+1] == '$' {
			i += 2
			continue
		}

		name, width := parseGroupRef(template[i+1:])
		if name == "" {
			return errors.Errorf("malformed group reference at byte %d of replacement", i)
		}
		if n, err := strconv.Atoi(name); err == nil {
			if n > re.NumSubexp() {
				return errors.Errorf("replacement references group %d, but the pattern has only %d", n, re.NumSubexp())
			}
		} else if !containsName(names, name) {
			return errors.Errorf("replacement references unknown group %q", name)
		}

		i += 1 + width
	}
	return nil
}

// parseGroupRef reads one group reference after a '$': either {name} or the
// longest run of reference bytes. Returns the referenced name and how many
// bytes it consumed; an empty name means the reference is malformed.
func parseGroupRef(rest string) (string, int) {
	if rest[0] == '{' {
		for j := 1; j < len(rest); j++ {
			if rest[j] == '}' {
				return rest[1:j], j + 1
			}
			if !isRefByte(rest[j]) {
				return "", 0
			}
		}
		return "", 0
	}

	j := 0
	for j < len(rest) && isRefByte(rest[j]) {
		j++
	}
	return rest[:j], j
}

func isRefByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
