/*
Package engine plans and executes a patch run over a source tree.

	+----------+     +-----------+     +----------+
	|   Plan   |────▶| Scheduler |────▶| Executor |
	| (units)  |     |  (pool)   |     | (1 file) |
	+----------+     +-----------+     +----------+
	                       │
	                       ▼
	                 +-----------+
	                 | RunResult |
	                 | (totals)  |
	                 +-----------+

🎯 Purpose:
- BuildPlan resolves each rule set's targets and coalesces sets sharing a
  file into one composite unit, so no two workers ever touch the same file
- Scheduler fans units out over a bounded errgroup pool
- Executor applies a set to one file: read, match, count, rewrite, atomic
  write-back
- RunResult merges every unit outcome behind a single mutex

🔄 Flow:
1. Resolve targets per rule set (pkg/target)
2. Coalesce per-file, sort for deterministic unit order
3. Workers apply rules in set order; later rules see earlier output
4. Write only when the buffer changed and the run is not dry
5. Failures become ErrorRecords; the run always finishes

📝 Design Philosophy:
Per-file failures are data, not control flow. A missing file counts nothing,
a read error is one record, a bad template skips only its own rule, a failed
write keeps its counts. The exit code is decided once, at the end, from
whether any record exists. Totals are invariant under worker count: units
are independent and merging is commutative.

🔍 Example:

	plan, err := engine.BuildPlan(ctx, resolver, sets)
	result := &engine.RunResult{}
	err = engine.NewScheduler(jobs).Run(ctx, engine.NewExecutor(root, dry), plan.Units, result)
*/
package engine
