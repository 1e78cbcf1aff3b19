package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/target"
)

func TestValidate_FlagsPthreadInjection(t *testing.T) {
	warnings := Validate(PipelineCache)

	require.Len(t, warnings, 1)
	assert.Equal(t, "pipeline-cache", warnings[0].Set)
	assert.Equal(t, "device_pipeline_cache", warnings[0].Rule)
	assert.Equal(t, "pthread_rwlock_t", warnings[0].Found)
	assert.Contains(t, warnings[0].String(), "pipeline-cache/device_pipeline_cache")
	assert.Contains(t, warnings[0].String(), "not portable")
}

func TestValidate_CleanSets(t *testing.T) {
	for _, set := range []*RuleSet{ShaderModel, WaveOps, ResourceBinding, GPUSpoof, DebugFlags} {
		assert.Empty(t, Validate(set), "set %q", set.Name)
	}
}

func TestValidate_OneWarningPerToken(t *testing.T) {
	rule, err := NewRule("locked_struct",
		`(struct foo\s*\{)`,
		"${1}\n    pthread_mutex_t lock;\n    pthread_cond_t cond;\n    sem_t sem;")
	require.NoError(t, err)

	set, err := NewRuleSet("custom", target.Policy{Glob: "*.c"}, []Rule{rule})
	require.NoError(t, err)

	warnings := Validate(set)
	require.Len(t, warnings, 3)

	var found []string
	for _, w := range warnings {
		assert.Equal(t, "custom", w.Set)
		assert.Equal(t, "locked_struct", w.Rule)
		found = append(found, w.Found)
	}
	assert.ElementsMatch(t, []string{"pthread_mutex_t", "pthread_cond_t", "sem_t"}, found)
}
