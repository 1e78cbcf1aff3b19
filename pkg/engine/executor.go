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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Executor applies one rule set to one file at a time. It is stateless
// and safe for concurrent use by the scheduler's workers.
type Executor struct {
	root   string
	dryRun bool
}

// 🏭 NewExecutor creates an executor rooted at the source tree. In dry-run
// mode matches are counted exactly as in a live run, but the buffer is never
// rewritten and nothing reaches disk.
func NewExecutor(root string, dryRun bool) *Executor {
	return &Executor{root: root, dryRun: dryRun}
}

// 🔄 Apply runs every rule of the set over the file, in order, each rule
// seeing the previous rule's output. Failures are captured as records in the
// result, never returned: a bad file or template must not stop the run.
func (e *Executor) Apply(ctx context.Context, file string, set *rules.RuleSet) UnitResult {
	logger := zerolog.Ctx(ctx)
	abs := filepath.Join(e.root, filepath.FromSlash(file))

	original, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// target raced away between resolution and execution
			logger.Debug().Str("file", file).Msg("target vanished before read")
			return UnitResult{}
		}
		return UnitResult{Errors: []ErrorRecord{{
			Kind:    ErrorKindRead,
			File:    file,
			Message: err.Error(),
		}}}
	}

	var res UnitResult
	content := string(original)
	var matches []RuleMatch

	for _, rule := range set.Rules {
		next, count, err := rule.Apply(content, e.dryRun)
		if err != nil {
			// neither applied nor skipped: the rule never ran
			res.Errors = append(res.Errors, ErrorRecord{
				Kind:    ErrorKindPattern,
				File:    file,
				Rule:    rule.Name,
				Message: err.Error(),
			})
			continue
		}
		if count == 0 {
			res.Skipped++
			continue
		}
		res.Applied += count
		matches = append(matches, RuleMatch{Rule: rule.Name, Count: count})
		content = next
	}

	if len(matches) > 0 {
		res.Change = &FileChange{File: file, Matches: matches, Total: res.Applied}
	}

	if e.dryRun || content == string(original) {
		logger.Debug().
			Str("file", file).
			Int("applied", res.Applied).
			Bool("dry_run", e.dryRun).
			Msg("no rewrite needed")
		return res
	}

	if err := writeFileAtomic(abs, []byte(content), fileMode(abs)); err != nil {
		// counts stand: the matches were real even though the rewrite failed
		res.Errors = append(res.Errors, ErrorRecord{
			Kind:    ErrorKindWrite,
			File:    file,
			Message: err.Error(),
		})
		return res
	}

	res.Wrote = true
	logger.Debug().
		Str("file", file).
		Str("rule_set", set.Name).
		Int("applied", res.Applied).
		Msg("file rewritten")
	return res
}

// writeFileAtomic writes content to a temp file beside the target and
// renames it into place, so a crash mid-write never leaves a half-patched
// source file.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// fileMode preserves the target's permission bits across the atomic
// replace, falling back to 0644.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
