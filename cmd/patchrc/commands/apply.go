package commands

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/console"
	"github.com/walteh/patchrc/pkg/engine"
	"github.com/walteh/patchrc/pkg/report"
	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

// applyFlags holds the flag values of one apply invocation. Only flags the
// user explicitly set are overlaid on the loaded config.
type applyFlags struct {
	root     string
	profile  string
	arch     string
	gpuSpoof bool
	dryRun   bool
	jobs     int
	report   string
	excludes []string
}

// NewApplyCmd creates a new apply command
func NewApplyCmd(ropts *opts.RootOpts) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the selected rule groups to a source tree",
		Long: `Apply loads the config file (when present), overlays any flags given on
the command line, resolves the target files of every enabled rule group
and rewrites them in place. With --dry-run files are left untouched and
the run reports what would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Augment logger with command context
			ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)

			cfg, err := ropts.LoadConfig(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			if err := applyOverrides(cfg, cmd, flags); err != nil {
				return errors.Errorf("applying flag overrides: %w", err)
			}

			return runApply(ctx, ropts.Console, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", ".", "source tree to patch")
	cmd.Flags().StringVar(&flags.profile, "profile", "standard", "rule profile (standard, ue5, maximum)")
	cmd.Flags().StringVar(&flags.arch, "arch", "x86_64", "target architecture (x86_64, arm64ec)")
	cmd.Flags().BoolVar(&flags.gpuSpoof, "gpu-spoof", true, "enable GPU identity spoofing rules")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "worker count (0 = one per CPU)")
	cmd.Flags().StringVar(&flags.report, "report", "", "write a run report to this file")
	cmd.Flags().StringSliceVar(&flags.excludes, "exclude", nil, "directory names to skip while walking")
	cmd.Flags().Lookup("report").NoOptDefVal = "patch-report.json"

	return cmd
}

// applyOverrides overlays explicitly set flags onto the loaded config and
// re-validates the result.
func applyOverrides(cfg *config.Config, cmd *cobra.Command, flags *applyFlags) error {
	set := cmd.Flags().Changed

	if set("root") {
		cfg.Root = flags.root
	}
	if set("profile") {
		cfg.Profile = flags.profile
	}
	if set("arch") {
		cfg.Arch = flags.arch
	}
	if set("gpu-spoof") {
		cfg.GPUSpoof = &flags.gpuSpoof
	}
	if set("dry-run") {
		cfg.DryRun = flags.dryRun
	}
	if set("jobs") {
		cfg.Jobs = flags.jobs
	}
	if set("report") {
		cfg.Report = flags.report
	}
	if set("exclude") {
		cfg.Excludes = flags.excludes
	}

	return cfg.Validate()
}

// runApply executes the full pipeline: select rule groups, resolve targets,
// rewrite files concurrently, then summarize and optionally write a report.
func runApply(ctx context.Context, ui *console.Console, cfg *config.Config) error {
	zerolog.Ctx(ctx).Debug().Stringer("config", cfg).Msg("starting run")

	// Profile selection first, custom sets after, preserving catalog order
	sets, err := cfg.Selection().RuleSets()
	if err != nil {
		return errors.Errorf("selecting rule groups: %w", err)
	}
	custom, err := cfg.CustomRuleSets()
	if err != nil {
		return errors.Errorf("building custom rule sets: %w", err)
	}
	sets = append(sets, custom...)

	result := &engine.RunResult{}
	for _, set := range sets {
		for _, w := range rules.Validate(set) {
			result.AddWarning(w.String())
			ui.Warning(w.String())
		}
	}

	ui.StartRun(ctx, console.RunBanner{
		Root:    cfg.Root,
		Profile: cfg.Profile,
		Arch:    cfg.Arch,
		Spoof:   cfg.GPUSpoofEnabled(),
		DryRun:  cfg.DryRun,
	})

	// The resolver validates the root up front; a bad root is a config
	// error, not a per-file failure.
	resolver, err := target.NewResolver(cfg.Root, cfg.Excludes...)
	if err != nil {
		return errors.Errorf("opening source root: %w", err)
	}

	plan, err := engine.BuildPlan(ctx, resolver, sets)
	if err != nil {
		return errors.Errorf("planning run: %w", err)
	}

	exec := engine.NewExecutor(cfg.Root, cfg.DryRun)
	if err := engine.NewScheduler(cfg.Jobs).Run(ctx, exec, plan.Units, result); err != nil {
		return errors.Errorf("executing plan: %w", err)
	}

	// Per-file lines ordered by path; files whose rewrite could not be
	// written back get the failed glyph.
	failed := make(map[string]bool)
	for _, rec := range result.Errors() {
		if rec.Kind == engine.ErrorKindWrite {
			failed[rec.File] = true
		}
	}

	changes := result.Changes()
	sort.Slice(changes, func(i, j int) bool { return changes[i].File < changes[j].File })
	for _, change := range changes {
		counts := make([]console.RuleCount, 0, len(change.Matches))
		for _, m := range change.Matches {
			counts = append(counts, console.RuleCount{Rule: m.Rule, Count: m.Count})
		}
		ui.LogFileRewrite(ctx, console.FileRewrite{
			Path:     change.File,
			Rewrites: change.Total,
			Rules:    counts,
			DryRun:   cfg.DryRun,
			Failed:   failed[change.File],
		})
	}

	if errs := result.Errors(); len(errs) > 0 {
		ui.LogNewline()
		shown := errs
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, rec := range shown {
			if rec.Rule != "" {
				ui.Errorf("%s: %s (rule %s): %s", rec.Kind, rec.File, rec.Rule, rec.Message)
			} else {
				ui.Errorf("%s: %s: %s", rec.Kind, rec.File, rec.Message)
			}
		}
		if len(errs) > len(shown) {
			ui.Errorf("... and %d more errors", len(errs)-len(shown))
		}
	}

	ui.EndRun(ctx, console.Summary{
		FilesScanned:  result.FilesScanned(),
		FilesChanged:  len(changes),
		FilesModified: result.FilesModified(),
		Applied:       result.Applied(),
		Skipped:       result.Skipped(),
		Errors:        len(result.Errors()),
		DryRun:        cfg.DryRun,
	})

	if cfg.Report != "" {
		rep := report.Build(cfg, result)
		if err := report.Write(ctx, cfg.Report, rep); err != nil {
			return errors.Errorf("writing report: %w", err)
		}
		ui.Infof("report written to %s", cfg.Report)
	}

	if result.HasErrors() {
		return errors.Errorf("run completed with %d errors", len(result.Errors()))
	}

	return nil
}
