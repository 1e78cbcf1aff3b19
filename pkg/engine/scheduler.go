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
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rules"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📦 Unit is one schedulable piece of work: a single file paired with the
// one rule set that owns it. The planner guarantees no two units share a
// file, so workers never contend on a target.
type Unit struct {
	File string
	Set  *rules.RuleSet
}

// 🏃 Scheduler fans units out over a bounded worker pool.
type Scheduler struct {
	jobs int
}

// 🏭 NewScheduler creates a scheduler running at most jobs units at once.
// Zero or negative means one worker per CPU.
func NewScheduler(jobs int) *Scheduler {
	return &Scheduler{jobs: jobs}
}

// 🔄 Run executes every unit and merges each outcome into result. Unit
// failures are records inside the result, not worker errors, so one broken
// file never cancels its siblings; only external context cancellation stops
// the run early.
func (s *Scheduler) Run(ctx context.Context, exec *Executor, units []Unit, result *RunResult) error {
	if len(units) == 0 {
		return nil
	}

	limit := s.jobs
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	if limit > len(units) {
		limit = len(units)
	}

	zerolog.Ctx(ctx).Debug().
		Int("units", len(units)).
		Int("workers", limit).
		Msg("scheduling run")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Errorf("run cancelled: %w", err)
			}
			result.Merge(exec.Apply(gctx, unit.File, unit.Set))
			return nil
		})
	}

	return g.Wait()
}
