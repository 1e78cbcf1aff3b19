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
	"fmt"
	"strings"
)

// replacementDenylist lists tokens that must never land in patched source.
// vkd3d-proton builds against C11 threads on every target; injected pthread
// primitives compile on Linux and break the MinGW build.
var replacementDenylist = []string{
	"pthread_rwlock_t",
	"pthread_mutex_t",
	"pthread_cond_t",
	"pthread_spinlock_t",
	"sem_t",
}

// ⚠️ Warning flags a rule whose replacement contains a denylisted token.
type Warning struct {
	Set   string // rule set name
	Rule  string // rule name
	Found string // the token that matched
}

func (w Warning) String() string {
	return fmt.Sprintf("rule %s/%s injects %q, which is not portable across vkd3d-proton build targets",
		w.Set, w.Rule, w.Found)
}

// Validate scans every replacement in the set against the denylist and
// returns one warning per rule/token hit. Advisory only: warnings never
// stop a run.
func Validate(set *RuleSet) []Warning {
	var warnings []Warning
	for _, r := range set.Rules {
		for _, tok := range replacementDenylist {
			if strings.Contains(r.Replacement, tok) {
				warnings = append(warnings, Warning{Set: set.Name, Rule: r.Name, Found: tok})
			}
		}
	}
	return warnings
}
