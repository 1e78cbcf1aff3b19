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

package report

import (
	"sort"
	"time"

	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/engine"
	"github.com/walteh/patchrc/pkg/rules"
)

// 📋 ConfigInfo echoes the inputs a run was invoked with.
type ConfigInfo struct {
	Root     string `json:"root"      yaml:"root"`
	Profile  string `json:"profile"   yaml:"profile"`
	Arch     string `json:"arch"      yaml:"arch"`
	GPUSpoof string `json:"gpu_spoof" yaml:"gpu_spoof"`
	DryRun   bool   `json:"dry_run"   yaml:"dry_run"`
	Jobs     int    `json:"jobs"      yaml:"jobs"`
}

// Counters are the aggregate totals of a run.
type Counters struct {
	FilesScanned  int `json:"files_scanned"  yaml:"files_scanned"`
	FilesModified int `json:"files_modified" yaml:"files_modified"`
	Applied       int `json:"applied"        yaml:"applied"`
	Skipped       int `json:"skipped"        yaml:"skipped"`
	Errors        int `json:"errors"         yaml:"errors"`
}

// 📄 Report is the structured summary of one run. It is computed from the
// run accumulator alone; no file is re-read to build it.
type Report struct {
	Version     string               `json:"version"            yaml:"version"`
	GeneratedAt time.Time            `json:"generated_at"       yaml:"generated_at"`
	Config      ConfigInfo           `json:"configuration"      yaml:"configuration"`
	Counters    Counters             `json:"counters"           yaml:"counters"`
	Changes     []engine.FileChange  `json:"changes"            yaml:"changes"`
	Errors      []engine.ErrorRecord `json:"errors"             yaml:"errors"`
	Warnings    []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// 🏗️ Build converts the aggregated run result into a report. Changes are
// sorted by file and errors by (file, kind, message), which makes reports
// byte-identical regardless of worker completion order.
func Build(cfg *config.Config, result *engine.RunResult) *Report {
	spoof := "disabled"
	if cfg.GPUSpoofEnabled() {
		spoof = rules.SpoofGPUName
	}

	changes := result.Changes()
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].File < changes[j].File
	})

	errs := result.Errors()
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].File != errs[j].File {
			return errs[i].File < errs[j].File
		}
		if errs[i].Kind != errs[j].Kind {
			return errs[i].Kind < errs[j].Kind
		}
		return errs[i].Message < errs[j].Message
	})

	return &Report{
		Version:     rules.CatalogVersion,
		GeneratedAt: time.Now().UTC(),
		Config: ConfigInfo{
			Root:     cfg.Root,
			Profile:  cfg.Profile,
			Arch:     cfg.Arch,
			GPUSpoof: spoof,
			DryRun:   cfg.DryRun,
			Jobs:     cfg.Jobs,
		},
		Counters: Counters{
			FilesScanned:  result.FilesScanned(),
			FilesModified: result.FilesModified(),
			Applied:       result.Applied(),
			Skipped:       result.Skipped(),
			Errors:        len(errs),
		},
		Changes:  changes,
		Errors:   errs,
		Warnings: result.Warnings(),
	}
}
