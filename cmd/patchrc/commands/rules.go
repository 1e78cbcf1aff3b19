package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/rules"
)

// NewRulesCmd creates a new rules command
func NewRulesCmd(ropts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rule catalog",
		Long: `Rules prints every built-in rule group with the files it targets, the
groups each profile enables, and any portability warnings from the
replacement validator.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd)
		},
	}

	return cmd
}

func runRules(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cyan := pterm.NewStyle(pterm.FgCyan)
	gray := pterm.NewStyle(pterm.FgGray)

	fmt.Fprintf(out, "%s %s\n\n",
		pterm.Bold.Sprint("patchrc rule catalog"),
		gray.Sprintf("(%s)", rules.CatalogVersion))

	fmt.Fprintln(out, pterm.Bold.Sprint("Groups:"))
	for _, set := range rules.All() {
		fmt.Fprintf(out, "  %s %2d rules  %s\n",
			cyan.Sprintf("%-20s", set.Name),
			len(set.Rules),
			gray.Sprint(describeTarget(set)))
	}

	fmt.Fprintf(out, "\n%s\n", pterm.Bold.Sprint("Profiles:"))
	for _, p := range []rules.Profile{rules.ProfileStandard, rules.ProfileUE5, rules.ProfileMaximum} {
		sel := rules.Selection{Profile: p, Arch: rules.ArchX8664, GPUSpoof: true}
		sets, err := sel.RuleSets()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(sets))
		for _, set := range sets {
			names = append(names, set.Name)
		}
		fmt.Fprintf(out, "  %s %s\n",
			cyan.Sprintf("%-10s", string(p)),
			gray.Sprint(strings.Join(names, " ")))
	}

	// Validator findings last, in catalog order
	warned := false
	for _, set := range rules.All() {
		for _, warning := range rules.Validate(set) {
			if !warned {
				fmt.Fprintf(out, "\n%s\n", pterm.Bold.Sprint("Warnings:"))
				warned = true
			}
			fmt.Fprintf(out, "  %s %s\n",
				pterm.Warning.Prefix.Text,
				pterm.Warning.MessageStyle.Sprint(warning.String()))
		}
	}

	return nil
}

// describeTarget renders a set's file-selection policy as one line.
func describeTarget(set *rules.RuleSet) string {
	if set.Target.Anchored() {
		if len(set.Target.SearchRoots) > 0 {
			return fmt.Sprintf("anchor %s in %s", set.Target.AnchorName, strings.Join(set.Target.SearchRoots, ", "))
		}
		return "anchor " + set.Target.AnchorName
	}
	return "glob " + set.Target.Glob
}
