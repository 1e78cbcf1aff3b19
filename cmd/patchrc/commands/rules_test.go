package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/rules"
)

func TestRulesCmd(t *testing.T) {
	ropts, _ := testOpts(opts.DefaultConfigFile)
	cmd := NewRulesCmd(ropts)

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.ExecuteContext(context.Background()), "executing rules command")

	out := buf.String()
	assert.Contains(t, out, "patchrc rule catalog", "expected catalog header")
	assert.Contains(t, out, rules.CatalogVersion, "expected catalog version")
	for _, name := range []string{"shader-model", "gpu-spoof", "cpu-arm64ec", "debug-flags"} {
		assert.Contains(t, out, name, "expected group %s listed", name)
	}
	assert.Contains(t, out, "anchor device.c", "expected anchored targeting rendered")
	assert.Contains(t, out, "Profiles:", "expected profiles section")
	assert.Contains(t, out, "maximum", "expected maximum profile listed")
}

func TestDescribeTarget(t *testing.T) {
	tests := []struct {
		name string
		set  string
		want string
	}{
		{name: "anchored_group", set: "shader-model", want: "anchor device.c in libs/vkd3d, src"},
		{name: "glob_group", set: "debug-flags", want: "glob **/*.{c,h}"},
	}

	byName := make(map[string]*rules.RuleSet)
	for _, set := range rules.All() {
		byName[set.Name] = set
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, ok := byName[tt.set]
			require.True(t, ok, "catalog should contain %s", tt.set)
			assert.Contains(t, describeTarget(set), tt.want)
		})
	}
}
