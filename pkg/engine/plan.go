package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/target"
	"gitlab.com/tozd/go/errors"
)

// 📋 Plan is a resolved run: one unit per target file, plus how many files
// each rule set claimed.
type Plan struct {
	Units  []Unit
	Groups []GroupCount
}

// GroupCount records how many files a rule set resolved to.
type GroupCount struct {
	Set   string
	Files int
}

// 🏭 BuildPlan resolves every rule set's targets and coalesces sets that
// share a file into one composite unit, so each file is read, rewritten and
// written exactly once no matter how many sets touch it. Rule names must
// stay unique across coalesced sets.
func BuildPlan(ctx context.Context, res *target.Resolver, sets []*rules.RuleSet) (*Plan, error) {
	perFile := make(map[string][]*rules.RuleSet)
	var groups []GroupCount

	for _, set := range sets {
		files, err := res.Resolve(ctx, set.Target)
		if err != nil {
			return nil, errors.Errorf("resolving targets for rule set %q: %w", set.Name, err)
		}
		groups = append(groups, GroupCount{Set: set.Name, Files: len(files)})
		for _, f := range files {
			perFile[f] = append(perFile[f], set)
		}
	}

	files := make([]string, 0, len(perFile))
	for f := range perFile {
		files = append(files, f)
	}
	sort.Strings(files)

	units := make([]Unit, 0, len(files))
	for _, f := range files {
		owners := perFile[f]
		if len(owners) == 1 {
			units = append(units, Unit{File: f, Set: owners[0]})
			continue
		}

		names := make([]string, 0, len(owners))
		for _, s := range owners {
			names = append(names, s.Name)
		}
		merged, err := rules.Merge(strings.Join(names, "+"), owners...)
		if err != nil {
			return nil, errors.Errorf("combining rule sets for %s: %w", f, err)
		}
		units = append(units, Unit{File: f, Set: merged})
	}

	return &Plan{Units: units, Groups: groups}, nil
}
