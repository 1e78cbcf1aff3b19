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

package engine

import (
	"sync"
)

// 🏷️ ErrorKind classifies the non-fatal failures a run records.
type ErrorKind string

const (
	ErrorKindRead    ErrorKind = "read"    // file could not be read
	ErrorKindWrite   ErrorKind = "write"   // rewritten file could not be written
	ErrorKindPattern ErrorKind = "pattern" // replacement template failed
)

// 📝 ErrorRecord is one captured failure. Recorded failures never abort the
// run; they surface in the report and flip the exit code.
type ErrorRecord struct {
	Kind    ErrorKind `json:"kind"    yaml:"kind"`
	File    string    `json:"file"    yaml:"file"`
	Rule    string    `json:"rule,omitempty" yaml:"rule,omitempty"`
	Message string    `json:"message" yaml:"message"`
}

// RuleMatch is one rule's hit count within a single file.
type RuleMatch struct {
	Rule  string `json:"rule"  yaml:"rule"`
	Count int    `json:"count" yaml:"count"`
}

// 📄 FileChange describes one file a run matched, with per-rule counts in
// application order. In dry-run mode it describes what would change.
type FileChange struct {
	File    string      `json:"file"    yaml:"file"`
	Matches []RuleMatch `json:"matches" yaml:"matches"`
	Total   int         `json:"total"   yaml:"total"`
}

// 📦 UnitResult is everything one worker produced for one file.
type UnitResult struct {
	Change  *FileChange // nil when no rule matched
	Applied int         // total matches across rules
	Skipped int         // rules that found nothing
	Wrote   bool        // a rewrite reached disk
	Errors  []ErrorRecord
}

// 📈 RunResult accumulates unit results across workers behind one mutex.
// Workers merge and move on; nothing here blocks longer than the copy.
type RunResult struct {
	mu            sync.Mutex
	filesScanned  int
	filesModified int
	applied       int
	skipped       int
	changes       []FileChange
	errors        []ErrorRecord
	warnings      []string
}

// Merge folds one unit's outcome into the run totals.
func (r *RunResult) Merge(unit UnitResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filesScanned++
	if unit.Wrote {
		r.filesModified++
	}
	r.applied += unit.Applied
	r.skipped += unit.Skipped
	if unit.Change != nil {
		r.changes = append(r.changes, *unit.Change)
	}
	r.errors = append(r.errors, unit.Errors...)
}

// AddWarning records an advisory message, such as a portability warning from
// rule validation. Warnings never affect the exit code.
func (r *RunResult) AddWarning(w string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// FilesScanned returns how many target files the run examined.
func (r *RunResult) FilesScanned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filesScanned
}

// FilesModified returns how many files were rewritten on disk. Always zero
// in dry-run mode; use Changes for what would be rewritten.
func (r *RunResult) FilesModified() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filesModified
}

// Applied returns the total match count across all files and rules.
func (r *RunResult) Applied() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// Skipped returns how many rule applications found nothing to match.
func (r *RunResult) Skipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

// Changes returns a copy of the per-file change records, in merge order.
func (r *RunResult) Changes() []FileChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FileChange(nil), r.changes...)
}

// Errors returns a copy of the recorded failures.
func (r *RunResult) Errors() []ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ErrorRecord(nil), r.errors...)
}

// Warnings returns a copy of the advisory messages.
func (r *RunResult) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// HasErrors reports whether any failure was recorded. This is what decides
// the process exit code.
func (r *RunResult) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors) > 0
}
