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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applySet runs every rule of a set over content in order, the way the
// engine does within one file pass, and returns the result plus per-rule
// match counts.
func applySet(t *testing.T, set *RuleSet, content string) (string, map[string]int) {
	t.Helper()

	counts := make(map[string]int, len(set.Rules))
	for _, r := range set.Rules {
		next, n, err := r.Apply(content, false)
		require.NoError(t, err)
		content = next
		counts[r.Name] = n
	}
	return content, counts
}

func TestAll_CatalogIsWellFormed(t *testing.T) {
	sets := All()
	require.Len(t, sets, 17)

	seen := make(map[string]bool)
	for _, set := range sets {
		assert.False(t, seen[set.Name], "set name %q repeats", set.Name)
		seen[set.Name] = true

		assert.NotEmpty(t, set.Rules, "set %q has no rules", set.Name)
		assert.True(t, set.Target.Anchored() || set.Target.Glob != "",
			"set %q has no targeting policy", set.Name)

		// a malformed template would surface here even with no matches
		for _, r := range set.Rules {
			_, _, err := r.Apply("", false)
			assert.NoError(t, err, "rule %s/%s", set.Name, r.Name)
		}
	}
}

func TestShaderModel_UpgradesAndSticks(t *testing.T) {
	content := strings.Join([]string{
		"data->HighestShaderModel = D3D_SHADER_MODEL_6_6;",
		"info.HighestShaderModel = D3D_SHADER_MODEL_5_1;",
		"device->vk_info.MaxSupportedFeatureLevel = D3D_FEATURE_LEVEL_12_0;",
	}, "\n")

	patched, counts := applySet(t, ShaderModel, content)
	assert.Equal(t, 1, counts["shader_model_6_9"])
	assert.Equal(t, 1, counts["shader_model_6_9_info"])
	assert.Equal(t, 1, counts["feature_level_12_2"])
	assert.Contains(t, patched, "data->HighestShaderModel = D3D_SHADER_MODEL_6_9;")
	assert.Contains(t, patched, "info.HighestShaderModel = D3D_SHADER_MODEL_6_9;")
	assert.Contains(t, patched, "MaxSupportedFeatureLevel = D3D_FEATURE_LEVEL_12_2;")

	// already-upgraded values sit outside every from-enumeration
	repatched, counts := applySet(t, ShaderModel, patched)
	assert.Equal(t, patched, repatched)
	for name, n := range counts {
		assert.Zero(t, n, "rule %s matched its own output", name)
	}
}

func TestResourceBinding_MixedAuthoringStyles(t *testing.T) {
	content := strings.Join([]string{
		"options.ResourceBindingTier = D3D12_RESOURCE_BINDING_TIER_2;",
		"options.TiledResourcesTier = D3D12_TILED_RESOURCES_TIER_2;",
		"options.ResourceHeapTier = D3D12_RESOURCE_HEAP_TIER_1;",
		"options19.MaxSamplerDescriptorHeapSize = 2048;",
		"options19.MaxViewDescriptorHeapSize = 500000;",
	}, "\n")

	patched, counts := applySet(t, ResourceBinding, content)
	for name, n := range counts {
		assert.Equal(t, 1, n, "rule %s", name)
	}
	assert.Contains(t, patched, "D3D12_RESOURCE_BINDING_TIER_3;")
	assert.Contains(t, patched, "D3D12_TILED_RESOURCES_TIER_4;")
	assert.Contains(t, patched, "D3D12_RESOURCE_HEAP_TIER_2;")
	assert.Contains(t, patched, "MaxSamplerDescriptorHeapSize = 4096;")
	assert.Contains(t, patched, "MaxViewDescriptorHeapSize = 1000000;")

	// tier rules enumerate their from-values and stop matching; the open
	// assignment rules match again but rewrite to identical text
	repatched, counts := applySet(t, ResourceBinding, patched)
	assert.Equal(t, patched, repatched)
	assert.Zero(t, counts["resource_binding_tier"])
	assert.Zero(t, counts["tiled_resources_tier"])
	assert.Zero(t, counts["resource_heap_tier"])
	assert.Equal(t, 1, counts["max_sampler_heap"])
	assert.Equal(t, 1, counts["max_view_heap"])
}

func TestStructInjections_MarkerCommentBlocksRerun(t *testing.T) {
	tests := []struct {
		name    string
		set     *RuleSet
		rule    string
		content string
		marker  string
		inject  string
	}{
		{
			name: "descriptor_heap_cache",
			set:  DescriptorCache,
			rule: "descriptor_heap_cache_fields",
			content: "struct d3d12_descriptor_heap\n{\n" +
				"    D3D12_DESCRIPTOR_HEAP_DESC desc;\n" +
				"    VkDescriptorSet vk_descriptor_sets;\n" +
				"    struct d3d12_device *device;\n};\n",
			marker: "/* patchrc: descriptor cache */",
			inject: "uint64_t last_descriptor_hash;",
		},
		{
			name: "command_queue_batching",
			set:  CommandBatch,
			rule: "command_queue_batch_fields",
			content: "struct d3d12_command_queue\n{\n" +
				"    ID3D12CommandQueue ID3D12CommandQueue_iface;\n" +
				"    VkQueue vk_queue;\n" +
				"    struct d3d12_device *device;\n};\n",
			marker: "/* patchrc: submit batching */",
			inject: "uint32_t pending_submits;",
		},
		{
			name: "command_list_barrier_state",
			set:  BarrierState,
			rule: "command_list_barrier_state",
			content: "struct d3d12_command_list\n{\n" +
				"    D3D12_COMMAND_LIST_TYPE type;\n" +
				"    VkCommandBuffer vk_command_buffer;\n" +
				"    bool is_recording;\n};\n",
			marker: "/* patchrc: barrier coalescing */",
			inject: "uint32_t pending_barriers;",
		},
		{
			name: "device_pipeline_cache",
			set:  PipelineCache,
			rule: "device_pipeline_cache",
			content: "struct d3d12_device\n{\n" +
				"    ID3D12Device9 ID3D12Device9_iface;\n" +
				"    VkDevice vk_device;\n" +
				"    struct vkd3d_instance *instance;\n};\n",
			marker: "/* patchrc: pipeline cache */",
			inject: "pipeline_cache;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rule Rule
			for _, r := range tt.set.Rules {
				if r.Name == tt.rule {
					rule = r
				}
			}
			require.NotEmpty(t, rule.Name)

			injected, count, err := rule.Apply(tt.content, false)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
			assert.Contains(t, injected, tt.marker)
			assert.Contains(t, injected, tt.inject)

			again, count, err := rule.Apply(injected, false)
			require.NoError(t, err)
			assert.Zero(t, count, "marker comment should block re-injection")
			assert.Equal(t, injected, again)
		})
	}
}

func TestDescriptorCache_MaxSetsRaised(t *testing.T) {
	content := "pool_desc.maxSets = 256;\n"

	patched, counts := applySet(t, DescriptorCache, content)
	assert.Equal(t, 1, counts["descriptor_pool_max_sets"])
	assert.Contains(t, patched, "maxSets = 16384;")

	repatched, counts := applySet(t, DescriptorCache, patched)
	assert.Equal(t, patched, repatched)
	assert.Equal(t, 1, counts["descriptor_pool_max_sets"])
}

func TestGPUSpoof_RewritesIdentity(t *testing.T) {
	content := strings.Join([]string{
		"adapter_id.vendor_id = properties->vendorID;",
		"adapter_id.device_id = properties->deviceID;",
		"desc->VendorId = 0x10de;",
		"desc->DeviceId = 0x2684;",
		"desc->SharedSystemMemory = vkd3d_sysmem_size(device);",
	}, "\n")

	patched, counts := applySet(t, GPUSpoof, content)
	for name, n := range counts {
		assert.Equal(t, 1, n, "rule %s", name)
	}
	assert.Contains(t, patched, "adapter_id.vendor_id = 0x1002;")
	assert.Contains(t, patched, "adapter_id.device_id = 0x163f;")
	assert.Contains(t, patched, "desc->VendorId = 0x1002;")
	assert.Contains(t, patched, "desc->DeviceId = 0x163f;")
	assert.Contains(t, patched, "desc->SharedSystemMemory = 16384ULL * 1024 * 1024;")

	// open assignment patterns: reruns match but change nothing
	repatched, _ := applySet(t, GPUSpoof, patched)
	assert.Equal(t, patched, repatched)
}

func TestCPUGates_SiblingDefinesStayUntouched(t *testing.T) {
	content := strings.Join([]string{
		"#define VKD3D_ENABLE_AVX 0",
		"#define VKD3D_ENABLE_AVX2 0",
		"#define VKD3D_ENABLE_FMA 0",
		"#define VKD3D_ENABLE_SSE4_2 0",
		"if (vkd3d_cpu_supports_avx() && vkd3d_cpu_supports_avx2())",
	}, "\n")

	patched, counts := applySet(t, CPUx8664, content)
	assert.Equal(t, 1, counts["enable_avx"], "AVX rule must not bleed into AVX2")
	assert.Equal(t, 1, counts["enable_avx2"])
	assert.Equal(t, 1, counts["force_avx"])
	assert.Equal(t, 1, counts["force_avx2"])
	assert.Contains(t, patched, "#define VKD3D_ENABLE_AVX 1\n#define VKD3D_ENABLE_AVX2 1")
	assert.Contains(t, patched, "if (true && true)")

	// call-site forcing is state-excluding; define flips rewrite in place
	repatched, counts := applySet(t, CPUx8664, patched)
	assert.Equal(t, patched, repatched)
	assert.Zero(t, counts["force_avx"])
	assert.Equal(t, 1, counts["enable_avx"])
}

func TestCPUARM64EC_DisablesX86Paths(t *testing.T) {
	content := strings.Join([]string{
		"#define VKD3D_ENABLE_SSE 1",
		"#define VKD3D_ENABLE_NEON 0",
		"have_sse = vkd3d_cpu_supports_sse4_2();",
	}, "\n")

	patched, counts := applySet(t, CPUARM64EC, content)
	assert.Equal(t, 1, counts["disable_sse"])
	assert.Equal(t, 1, counts["enable_neon"])
	assert.Equal(t, 1, counts["disable_sse4_2_check"])
	assert.Contains(t, patched, "#define VKD3D_ENABLE_SSE 0")
	assert.Contains(t, patched, "#define VKD3D_ENABLE_NEON 1")
	assert.Contains(t, patched, "have_sse = false;")
}

func TestDebugFlags_NarrowerNameDoesNotShadow(t *testing.T) {
	content := "#define VKD3D_DEBUG 1\n#define VKD3D_SHADER_DEBUG 1\n"

	patched, counts := applySet(t, DebugFlags, content)
	assert.Equal(t, 1, counts["disable_debug"])
	assert.Equal(t, 1, counts["disable_shader_debug"])
	assert.Equal(t, "#define VKD3D_DEBUG 0\n#define VKD3D_SHADER_DEBUG 0\n", patched)

	// flipped flags sit outside the `1` enumeration
	repatched, counts := applySet(t, DebugFlags, patched)
	assert.Equal(t, patched, repatched)
	assert.Zero(t, counts["disable_debug"])
	assert.Zero(t, counts["disable_shader_debug"])
}

func TestDefaultExcludes_ReturnsFreshCopy(t *testing.T) {
	first := DefaultExcludes()
	first[0] = "mutated"

	assert.Equal(t, []string{"tests", "demos", "include", ".git"}, DefaultExcludes())
}

func TestCatalogPolicies(t *testing.T) {
	assert.True(t, ShaderModel.Target.Anchored())
	assert.Equal(t, "device.c", ShaderModel.Target.AnchorName)
	assert.Equal(t, []string{"libs/vkd3d", "src"}, ShaderModel.Target.SearchRoots)

	assert.False(t, DebugFlags.Target.Anchored())
	assert.Equal(t, "**/*.{c,h}", DebugFlags.Target.Glob)
	assert.Equal(t, DefaultExcludes(), DebugFlags.Target.Excludes)
}
