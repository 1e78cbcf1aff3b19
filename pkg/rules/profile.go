package rules

import (
	"gitlab.com/tozd/go/errors"
)

// 📦 Profile picks how aggressive the capability rewrite is.
type Profile string

const (
	// ProfileStandard upgrades shader model, wave ops, resource binding
	// and shader arithmetic caps.
	ProfileStandard Profile = "standard"

	// ProfileUE5 adds the groups Unreal Engine 5 renderers probe for:
	// mesh shaders, raytracing, sampler feedback, texture streaming.
	ProfileUE5 Profile = "ue5"

	// ProfileMaximum enables every capability group plus the performance
	// struct injections.
	ProfileMaximum Profile = "maximum"
)

// ParseProfile converts user input into a Profile.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileStandard, ProfileUE5, ProfileMaximum:
		return Profile(s), nil
	default:
		return "", errors.Errorf("unknown profile %q (want standard, ue5 or maximum)", s)
	}
}

// Arch selects which CPU feature-gate group a run applies.
type Arch string

const (
	ArchX8664   Arch = "x86_64"
	ArchARM64EC Arch = "arm64ec"
)

// ParseArch converts user input into an Arch.
func ParseArch(s string) (Arch, error) {
	switch Arch(s) {
	case ArchX8664, ArchARM64EC:
		return Arch(s), nil
	default:
		return "", errors.Errorf("unknown arch %q (want x86_64 or arm64ec)", s)
	}
}

// 🔧 Selection is a fully resolved choice of catalog groups for one run.
type Selection struct {
	Profile  Profile
	Arch     Arch
	GPUSpoof bool
}

// RuleSets returns the groups the selection enables, in application order:
// capability upgrades, performance injections, GPU identity, CPU gates,
// debug flags.
func (s Selection) RuleSets() ([]*RuleSet, error) {
	sets := []*RuleSet{ShaderModel, WaveOps, ResourceBinding, ShaderOps}

	switch s.Profile {
	case ProfileStandard:
	case ProfileUE5:
		sets = append(sets, MeshShader, Raytracing, SamplerFeedback, TextureStreaming)
	case ProfileMaximum:
		sets = append(sets,
			MeshShader, Raytracing, SamplerFeedback, TextureStreaming,
			RenderingFeatures,
			DescriptorCache, CommandBatch, BarrierState, PipelineCache)
	default:
		return nil, errors.Errorf("unknown profile %q", s.Profile)
	}

	if s.GPUSpoof {
		sets = append(sets, GPUSpoof)
	}

	switch s.Arch {
	case ArchX8664:
		sets = append(sets, CPUx8664)
	case ArchARM64EC:
		sets = append(sets, CPUARM64EC)
	default:
		return nil, errors.Errorf("unknown arch %q", s.Arch)
	}

	return append(sets, DebugFlags), nil
}
