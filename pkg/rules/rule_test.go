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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/target"
)

func TestNewRule(t *testing.T) {
	tests := []struct {
		name        string
		ruleName    string
		pattern     string
		replacement string
		wantError   string
	}{
		{
			name:        "valid_rule",
			ruleName:    "wave_ops",
			pattern:     `(\boptions1\.WaveOps\s*=\s*)[^;]+;`,
			replacement: "${1}TRUE;",
		},
		{
			name:        "valid_named_group",
			ruleName:    "named",
			pattern:     `(?P<lhs>x\s*=\s*)\d+`,
			replacement: "${lhs}42",
		},
		{
			name:        "missing_name",
			pattern:     "x",
			replacement: "y",
			wantError:   "rule name is required",
		},
		{
			name:        "missing_pattern",
			ruleName:    "empty",
			replacement: "y",
			wantError:   "pattern is required",
		},
		{
			name:        "invalid_pattern",
			ruleName:    "broken",
			pattern:     "[unclosed",
			replacement: "y",
			wantError:   "compiling pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRule(tt.ruleName, tt.pattern, tt.replacement)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.ruleName, r.Name)
			assert.Equal(t, tt.pattern, r.Pattern)
			assert.Equal(t, tt.replacement, r.Replacement)
		})
	}
}

func TestRule_Apply(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		replacement string
		content     string
		dryRun      bool
		want        string
		wantCount   int
	}{
		{
			name:        "single_assignment",
			pattern:     `(\bdata->HighestShaderModel\s*=\s*)[^;]+;`,
			replacement: "${1}D3D_SHADER_MODEL_6_9;",
			content:     "data->HighestShaderModel = D3D_SHADER_MODEL_6_6;",
			want:        "data->HighestShaderModel = D3D_SHADER_MODEL_6_9;",
			wantCount:   1,
		},
		{
			name:        "counts_every_match",
			pattern:     `vkd3d_cpu_supports_avx\s*\(\s*\)`,
			replacement: "true",
			content:     "if (vkd3d_cpu_supports_avx())\n    x = vkd3d_cpu_supports_avx();",
			want:        "if (true)\n    x = true;",
			wantCount:   2,
		},
		{
			name:        "no_match",
			pattern:     `never_present`,
			replacement: "x",
			content:     "static int y;",
			want:        "static int y;",
			wantCount:   0,
		},
		{
			name:        "dry_run_counts_without_rewriting",
			pattern:     `foo`,
			replacement: "bar",
			content:     "foo foo",
			dryRun:      true,
			want:        "foo foo",
			wantCount:   2,
		},
		{
			name:        "dollar_anchors_each_line",
			pattern:     `x;$`,
			replacement: "y;",
			content:     "x;\nx;\n",
			want:        "y;\ny;\n",
			wantCount:   2,
		},
		{
			name:        "dot_spans_newlines",
			pattern:     `\{.*\}`,
			replacement: "{}",
			content:     "struct s {\n    int a;\n};",
			want:        "struct s {};",
			wantCount:   1,
		},
		{
			name:        "literal_dollar",
			pattern:     `price`,
			replacement: "$$cost",
			content:     "price",
			want:        "$cost",
			wantCount:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRule("test_rule", tt.pattern, tt.replacement)
			require.NoError(t, err)

			got, count, err := r.Apply(tt.content, tt.dryRun)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestRule_Apply_TemplateErrors(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		replacement string
		wantError   string
	}{
		{
			name:        "numeric_group_out_of_range",
			pattern:     `(a)`,
			replacement: "${2}",
			wantError:   "has only 1",
		},
		{
			name:        "unknown_named_group",
			pattern:     `(?P<lhs>a)`,
			replacement: "${rhs}",
			wantError:   `unknown group "rhs"`,
		},
		{
			name:        "dangling_dollar",
			pattern:     `a`,
			replacement: "b$",
			wantError:   "dangling $",
		},
		{
			name:        "unterminated_brace",
			pattern:     `(a)`,
			replacement: "${1",
			wantError:   "malformed group reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRule("bad_template", tt.pattern, tt.replacement)
			require.NoError(t, err) // template problems surface per application

			got, count, err := r.Apply("aaa", false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
			assert.Contains(t, err.Error(), "bad_template")
			assert.Equal(t, "aaa", got)
			assert.Equal(t, 0, count)
		})
	}
}

func TestRule_Apply_ZeroValue(t *testing.T) {
	var r Rule

	got, count, err := r.Apply("content", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not built with NewRule")
	assert.Equal(t, "content", got)
	assert.Equal(t, 0, count)
}

func TestNewRuleSet(t *testing.T) {
	ruleA, err := NewRule("a", "x", "y")
	require.NoError(t, err)
	ruleB, err := NewRule("b", "x", "y")
	require.NoError(t, err)
	dupA, err := NewRule("a", "z", "w")
	require.NoError(t, err)

	tests := []struct {
		name      string
		setName   string
		rules     []Rule
		wantError string
	}{
		{
			name:    "valid_set",
			setName: "caps",
			rules:   []Rule{ruleA, ruleB},
		},
		{
			name:      "missing_name",
			rules:     []Rule{ruleA},
			wantError: "rule set name is required",
		},
		{
			name:      "duplicate_rule_names",
			setName:   "caps",
			rules:     []Rule{ruleA, dupA},
			wantError: `duplicate rule name "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewRuleSet(tt.setName, target.Policy{Glob: "**/*.c"}, tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.setName, set.Name)
			assert.Len(t, set.Rules, len(tt.rules))
		})
	}
}

func TestMerge(t *testing.T) {
	ruleA, err := NewRule("a", "x", "y")
	require.NoError(t, err)
	ruleB, err := NewRule("b", "x", "y")
	require.NoError(t, err)
	ruleC, err := NewRule("c", "x", "y")
	require.NoError(t, err)

	setOne, err := NewRuleSet("one", target.Policy{Glob: "*.c"}, []Rule{ruleA, ruleB})
	require.NoError(t, err)
	setTwo, err := NewRuleSet("two", target.Policy{Glob: "*.h"}, []Rule{ruleC})
	require.NoError(t, err)

	t.Run("preserves_group_order", func(t *testing.T) {
		merged, err := Merge("one+two", setOne, setTwo)
		require.NoError(t, err)

		var names []string
		for _, r := range merged.Rules {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"a", "b", "c"}, names)
		assert.Equal(t, target.Policy{}, merged.Target)
	})

	t.Run("rejects_cross_set_collisions", func(t *testing.T) {
		_, err := Merge("one+one", setOne, setOne)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate rule name")
	})
}
