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

	"github.com/walteh/patchrc/pkg/target"
)

// CatalogVersion identifies the shipped vkd3d-proton rule catalog, echoed in
// every report.
const CatalogVersion = "2.0.1"

// Steam Deck "Van Gogh" identity written by the gpu-spoof group.
const (
	spoofVendorID     = "0x1002"
	spoofDeviceID     = "0x163f"
	spoofSharedMemory = "16384ULL * 1024 * 1024"
)

// SpoofGPUName is the human-readable name of the spoofed adapter.
const SpoofGPUName = "Steam Deck Van Gogh"

// DefaultExcludes returns the path substrings pruned from every built-in
// group's targeting. Fresh copy per call so callers may append freely.
func DefaultExcludes() []string {
	return []string{"tests", "demos", "include", ".git"}
}

// capabilityPolicy targets the device capability files: probe the usual
// vkd3d-proton layouts for device.c, falling back to the source root.
func capabilityPolicy() target.Policy {
	return target.Policy{
		AnchorName:  "device.c",
		SearchRoots: []string{"libs/vkd3d", "src"},
		Excludes:    DefaultExcludes(),
	}
}

// sourcePolicy targets every C source and header in the tree.
func sourcePolicy() target.Policy {
	return target.Policy{
		Glob:     "**/*.{c,h}",
		Excludes: DefaultExcludes(),
	}
}

// assign builds a pattern matching an assignment to varPath with any
// right-hand side. Rules built on it match their own output and rewrite it
// to the same text, so a rerun produces a no-op diff and no write.
func assign(varPath string) string {
	return `(\b` + regexp.QuoteMeta(varPath) + `\s*=\s*)[^;]+;`
}

// assignFrom narrows an assignment pattern to specific current values. Rules
// built on it cannot match the value they write, so a rerun finds zero
// matches. Used wherever the not-yet-upgraded values are enumerable.
func assignFrom(varPath, valuePattern string) string {
	return `(\b` + regexp.QuoteMeta(varPath) + `\s*=\s*)` + valuePattern + `;`
}

func mustRule(name, pattern, replacement string) Rule {
	r, err := NewRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func mustRuleSet(name string, policy target.Policy, ruleList []Rule) *RuleSet {
	s, err := NewRuleSet(name, policy, ruleList)
	if err != nil {
		panic(err)
	}
	return s
}

// 🧩 Base capability groups, applied under every profile.

var ShaderModel = mustRuleSet("shader-model", capabilityPolicy(), []Rule{
	mustRule("shader_model_6_9",
		assignFrom("data->HighestShaderModel", `D3D_SHADER_MODEL_[0-6]_[0-8]`),
		"${1}D3D_SHADER_MODEL_6_9;"),
	mustRule("shader_model_6_9_info",
		assignFrom("info.HighestShaderModel", `D3D_SHADER_MODEL_[0-6]_[0-8]`),
		"${1}D3D_SHADER_MODEL_6_9;"),
	mustRule("feature_level_12_2",
		assignFrom("MaxSupportedFeatureLevel", `D3D_FEATURE_LEVEL_1[0-2]_[01]`),
		"${1}D3D_FEATURE_LEVEL_12_2;"),
})

var WaveOps = mustRuleSet("wave-ops", capabilityPolicy(), []Rule{
	mustRule("wave_ops", assign("options1.WaveOps"), "${1}TRUE;"),
	mustRule("wave_lane_min", assign("options1.WaveLaneCountMin"), "${1}32;"),
	mustRule("wave_lane_max", assign("options1.WaveLaneCountMax"), "${1}128;"),
	mustRule("wave_mma",
		assignFrom("options9.WaveMMATier", `D3D12_WAVE_MMA_TIER_NOT_SUPPORTED`),
		"${1}D3D12_WAVE_MMA_TIER_1_0;"),
})

var ResourceBinding = mustRuleSet("resource-binding", capabilityPolicy(), []Rule{
	mustRule("resource_binding_tier",
		assignFrom("options.ResourceBindingTier", `D3D12_RESOURCE_BINDING_TIER_[12]`),
		"${1}D3D12_RESOURCE_BINDING_TIER_3;"),
	mustRule("tiled_resources_tier",
		assignFrom("options.TiledResourcesTier", `D3D12_TILED_RESOURCES_TIER_(?:[1-3]|NOT_SUPPORTED)`),
		"${1}D3D12_TILED_RESOURCES_TIER_4;"),
	mustRule("resource_heap_tier",
		assignFrom("options.ResourceHeapTier", `D3D12_RESOURCE_HEAP_TIER_1`),
		"${1}D3D12_RESOURCE_HEAP_TIER_2;"),
	mustRule("max_sampler_heap", assign("options19.MaxSamplerDescriptorHeapSize"), "${1}4096;"),
	mustRule("max_view_heap", assign("options19.MaxViewDescriptorHeapSize"), "${1}1000000;"),
})

var ShaderOps = mustRuleSet("shader-ops", capabilityPolicy(), []Rule{
	mustRule("double_precision", assign("options.DoublePrecisionFloatShaderOps"), "${1}TRUE;"),
	mustRule("int64_ops", assign("options1.Int64ShaderOps"), "${1}TRUE;"),
	mustRule("native_16bit", assign("options4.Native16BitShaderOpsSupported"), "${1}TRUE;"),
	mustRule("atomic64_typed", assign("options9.AtomicInt64OnTypedResourceSupported"), "${1}TRUE;"),
	mustRule("atomic64_shared", assign("options9.AtomicInt64OnGroupSharedSupported"), "${1}TRUE;"),
	mustRule("atomic64_heap", assign("options11.AtomicInt64OnDescriptorHeapResourceSupported"), "${1}TRUE;"),
})

// 🧩 UE5 extension groups: Nanite, Lumen, virtual shadow maps, virtual
// textures.

var MeshShader = mustRuleSet("mesh-shader", capabilityPolicy(), []Rule{
	mustRule("mesh_shader",
		assignFrom("options7.MeshShaderTier", `D3D12_MESH_SHADER_TIER_NOT_SUPPORTED`),
		"${1}D3D12_MESH_SHADER_TIER_1;"),
	mustRule("mesh_pipeline_stats", assign("options9.MeshShaderPipelineStatsSupported"), "${1}TRUE;"),
	mustRule("mesh_full_range_rt", assign("options9.MeshShaderSupportsFullRangeRenderTargetArrayIndex"), "${1}TRUE;"),
	mustRule("mesh_derivatives", assign("options9.DerivativesInMeshAndAmplificationShadersSupported"), "${1}TRUE;"),
	mustRule("mesh_per_primitive_vrs", assign("options10.MeshShaderPerPrimitiveShadingRateSupported"), "${1}TRUE;"),
	mustRule("execute_indirect",
		assignFrom("options21.ExecuteIndirectTier", `D3D12_EXECUTE_INDIRECT_TIER_1_0`),
		"${1}D3D12_EXECUTE_INDIRECT_TIER_1_1;"),
	mustRule("work_graphs",
		assignFrom("options21.WorkGraphsTier", `D3D12_WORK_GRAPHS_TIER_NOT_SUPPORTED`),
		"${1}D3D12_WORK_GRAPHS_TIER_1_0;"),
	mustRule("enhanced_barriers", assign("options12.EnhancedBarriersSupported"), "${1}TRUE;"),
	mustRule("compute_write_watch", assign("options20.ComputeOnlyWriteWatchSupported"), "${1}TRUE;"),
})

var Raytracing = mustRuleSet("raytracing", capabilityPolicy(), []Rule{
	mustRule("raytracing_tier",
		assignFrom("options5.RaytracingTier", `D3D12_RAYTRACING_TIER_(?:NOT_SUPPORTED|1_0)`),
		"${1}D3D12_RAYTRACING_TIER_1_1;"),
	mustRule("render_passes",
		assignFrom("options5.RenderPassesTier", `D3D12_RENDER_PASS_TIER_[01]`),
		"${1}D3D12_RENDER_PASS_TIER_2;"),
	mustRule("vrs_tier",
		assignFrom("options6.VariableShadingRateTier", `D3D12_VARIABLE_SHADING_RATE_TIER_(?:NOT_SUPPORTED|1)`),
		"${1}D3D12_VARIABLE_SHADING_RATE_TIER_2;"),
	mustRule("vrs_tile_8", assign("options6.ShadingRateImageTileSize"), "${1}8;"),
	mustRule("background_processing", assign("options6.BackgroundProcessingSupported"), "${1}TRUE;"),
	mustRule("vrs_sum_combiner", assign("options10.VariableRateShadingSumCombinerSupported"), "${1}TRUE;"),
})

var SamplerFeedback = mustRuleSet("sampler-feedback", capabilityPolicy(), []Rule{
	mustRule("sampler_feedback",
		assignFrom("options7.SamplerFeedbackTier", `D3D12_SAMPLER_FEEDBACK_TIER_(?:NOT_SUPPORTED|0_9)`),
		"${1}D3D12_SAMPLER_FEEDBACK_TIER_1_0;"),
	mustRule("depth_bounds", assign("options2.DepthBoundsTestSupported"), "${1}TRUE;"),
	mustRule("advanced_texture_ops", assign("options14.AdvancedTextureOpsSupported"), "${1}TRUE;"),
	mustRule("writeable_msaa", assign("options14.WriteableMSAATexturesSupported"), "${1}TRUE;"),
})

var TextureStreaming = mustRuleSet("texture-streaming", capabilityPolicy(), []Rule{
	mustRule("unaligned_textures", assign("options8.UnalignedBlockTexturesSupported"), "${1}TRUE;"),
	mustRule("unrestricted_copy", assign("options13.UnrestrictedBufferTextureCopyPitchSupported"), "${1}TRUE;"),
	mustRule("texture_copy_dims", assign("options13.TextureCopyBetweenDimensionsSupported"), "${1}TRUE;"),
	mustRule("gpu_upload_heap", assign("options16.GPUUploadHeapSupported"), "${1}TRUE;"),
})

// 🧩 Maximum-profile extras.

var RenderingFeatures = mustRuleSet("rendering-features", capabilityPolicy(), []Rule{
	mustRule("unrestricted_vertex", assign("options13.UnrestrictedVertexElementAlignmentSupported"), "${1}TRUE;"),
	mustRule("inverted_viewport_y", assign("options13.InvertedViewportHeightFlipsYSupported"), "${1}TRUE;"),
	mustRule("inverted_viewport_z", assign("options13.InvertedViewportDepthFlipsZSupported"), "${1}TRUE;"),
	mustRule("alpha_blend", assign("options13.AlphaBlendFactorSupported"), "${1}TRUE;"),
	mustRule("triangle_fan", assign("options15.TriangleFanSupported"), "${1}TRUE;"),
	mustRule("dynamic_strip_cut", assign("options15.DynamicIndexBufferStripCutSupported"), "${1}TRUE;"),
	mustRule("rasterizer_desc2", assign("options19.RasterizerDesc2Supported"), "${1}TRUE;"),
	mustRule("narrow_quad_lines", assign("options19.NarrowQuadrilateralLinesSupported"), "${1}TRUE;"),
})

// Struct-injection groups append fields to vkd3d-proton structs. Each
// pattern requires its anchor member line to end at the semicolon; the
// replacement appends a marker comment to that line, so a rerun cannot
// re-inject.

var DescriptorCache = mustRuleSet("descriptor-cache", capabilityPolicy(), []Rule{
	mustRule("descriptor_heap_cache_fields",
		`(struct d3d12_descriptor_heap\s*\{[^}]*VkDescriptorSet\s+vk_descriptor_sets;)$`,
		"${1} /* patchrc: descriptor cache */\n    uint64_t last_descriptor_hash;\n    bool descriptor_cache_valid;"),
	mustRule("descriptor_pool_max_sets", `(maxSets\s*=\s*)\d+`, "${1}16384"),
})

var CommandBatch = mustRuleSet("command-batch", capabilityPolicy(), []Rule{
	mustRule("command_queue_batch_fields",
		`(struct d3d12_command_queue\s*\{[^}]*VkQueue\s+vk_queue;)$`,
		"${1} /* patchrc: submit batching */\n    uint32_t pending_submits;\n    uint32_t submit_threshold;"),
})

var BarrierState = mustRuleSet("barrier-state", capabilityPolicy(), []Rule{
	mustRule("command_list_barrier_state",
		`(struct d3d12_command_list\s*\{[^}]*VkCommandBuffer\s+vk_command_buffer;)$`,
		"${1} /* patchrc: barrier coalescing */\n    struct { uint32_t pending_barriers; VkPipelineStageFlags2 last_dst_stage; } barrier_state;"),
})

var PipelineCache = mustRuleSet("pipeline-cache", capabilityPolicy(), []Rule{
	mustRule("device_pipeline_cache",
		`(struct d3d12_device\s*\{[^}]*VkDevice\s+vk_device;)$`,
		"${1} /* patchrc: pipeline cache */\n    struct { uint64_t *hashes; VkPipeline *pipelines; size_t count; size_t capacity; pthread_rwlock_t lock; } pipeline_cache;"),
})

// 🧩 GPU identity spoofing, on by default, disabled per run.

var GPUSpoof = mustRuleSet("gpu-spoof", capabilityPolicy(), []Rule{
	mustRule("vendor_id", assign("adapter_id.vendor_id"), "${1}"+spoofVendorID+";"),
	mustRule("device_id", assign("adapter_id.device_id"), "${1}"+spoofDeviceID+";"),
	mustRule("dxgi_vendor", `(VendorId\s*=\s*)[^;]+;`, "${1}"+spoofVendorID+";"),
	mustRule("dxgi_device", `(DeviceId\s*=\s*)[^;]+;`, "${1}"+spoofDeviceID+";"),
	mustRule("shared_memory", `(SharedSystemMemory\s*=\s*)[^;]+;`, "${1}"+spoofSharedMemory+";"),
})

// 🧩 Tree-wide groups, glob-targeted at every C source and header.

var CPUx8664 = mustRuleSet("cpu-x86-64", sourcePolicy(), []Rule{
	mustRule("force_sse4_2", `vkd3d_cpu_supports_sse4_2\s*\(\s*\)`, "true"),
	mustRule("force_avx", `vkd3d_cpu_supports_avx\s*\(\s*\)`, "true"),
	mustRule("force_avx2", `vkd3d_cpu_supports_avx2\s*\(\s*\)`, "true"),
	mustRule("force_fma", `vkd3d_cpu_supports_fma\s*\(\s*\)`, "true"),
	mustRule("enable_avx", `#define\s+VKD3D_ENABLE_AVX\s+\d+`, "#define VKD3D_ENABLE_AVX 1"),
	mustRule("enable_avx2", `#define\s+VKD3D_ENABLE_AVX2\s+\d+`, "#define VKD3D_ENABLE_AVX2 1"),
	mustRule("enable_fma", `#define\s+VKD3D_ENABLE_FMA\s+\d+`, "#define VKD3D_ENABLE_FMA 1"),
	mustRule("enable_sse4_2", `#define\s+VKD3D_ENABLE_SSE4_2\s+\d+`, "#define VKD3D_ENABLE_SSE4_2 1"),
})

var CPUARM64EC = mustRuleSet("cpu-arm64ec", sourcePolicy(), []Rule{
	mustRule("disable_avx", `#define\s+VKD3D_ENABLE_AVX\s+\d+`, "#define VKD3D_ENABLE_AVX 0"),
	mustRule("disable_avx2", `#define\s+VKD3D_ENABLE_AVX2\s+\d+`, "#define VKD3D_ENABLE_AVX2 0"),
	mustRule("disable_fma", `#define\s+VKD3D_ENABLE_FMA\s+\d+`, "#define VKD3D_ENABLE_FMA 0"),
	mustRule("disable_sse4_2", `#define\s+VKD3D_ENABLE_SSE4_2\s+\d+`, "#define VKD3D_ENABLE_SSE4_2 0"),
	mustRule("disable_sse", `#define\s+VKD3D_ENABLE_SSE\s+\d+`, "#define VKD3D_ENABLE_SSE 0"),
	mustRule("enable_neon", `#define\s+VKD3D_ENABLE_NEON\s+\d+`, "#define VKD3D_ENABLE_NEON 1"),
	mustRule("disable_sse4_2_check", `vkd3d_cpu_supports_sse4_2\s*\(\s*\)`, "false"),
	mustRule("disable_avx_check", `vkd3d_cpu_supports_avx\s*\(\s*\)`, "false"),
	mustRule("disable_avx2_check", `vkd3d_cpu_supports_avx2\s*\(\s*\)`, "false"),
	mustRule("disable_fma_check", `vkd3d_cpu_supports_fma\s*\(\s*\)`, "false"),
})

var DebugFlags = mustRuleSet("debug-flags", sourcePolicy(), []Rule{
	mustRule("disable_debug", `#define\s+VKD3D_DEBUG\s+1`, "#define VKD3D_DEBUG 0"),
	mustRule("disable_profiling", `#define\s+VKD3D_PROFILING\s+1`, "#define VKD3D_PROFILING 0"),
	mustRule("disable_shader_debug", `#define\s+VKD3D_SHADER_DEBUG\s+1`, "#define VKD3D_SHADER_DEBUG 0"),
})

// All returns every built-in rule set in catalog order.
func All() []*RuleSet {
	return []*RuleSet{
		ShaderModel, WaveOps, ResourceBinding, ShaderOps,
		MeshShader, Raytracing, SamplerFeedback, TextureStreaming,
		RenderingFeatures,
		DescriptorCache, CommandBatch, BarrierState, PipelineCache,
		GPUSpoof,
		CPUx8664, CPUARM64EC, DebugFlags,
	}
}
