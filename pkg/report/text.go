package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🔧 TextEncoder renders the plain-text summary layout
type TextEncoder struct{}

func init() {
	Register(&TextEncoder{})
}

// 🔍 CanEncode checks if this encoder can handle the given file
func (e *TextEncoder) CanEncode(filename string) bool {
	return strings.HasSuffix(filename, ".txt")
}

// 📝 Encode writes the report as a human-readable summary
func (e *TextEncoder) Encode(w io.Writer, rep *Report) error {
	jobs := strconv.Itoa(rep.Config.Jobs)
	if rep.Config.Jobs == 0 {
		jobs = "auto"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "patchrc report (catalog %s)\n", rep.Version)
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	fmt.Fprintf(&b, "Generated:    %s\n", rep.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Root:         %s\n", rep.Config.Root)
	fmt.Fprintf(&b, "Architecture: %s\n", rep.Config.Arch)
	fmt.Fprintf(&b, "Profile:      %s\n", rep.Config.Profile)
	fmt.Fprintf(&b, "GPU Spoof:    %s\n", rep.Config.GPUSpoof)
	fmt.Fprintf(&b, "Dry Run:      %v\n", rep.Config.DryRun)
	fmt.Fprintf(&b, "Jobs:         %s\n", jobs)
	b.WriteString("\n")

	if len(rep.Changes) > 0 {
		b.WriteString("Changes:\n")
		for _, change := range rep.Changes {
			fmt.Fprintf(&b, "  %s (%d)\n", change.File, change.Total)
			for _, m := range change.Matches {
				fmt.Fprintf(&b, "    - %s: %d\n", m.Rule, m.Count)
			}
		}
		b.WriteString("\n")
	}

	if len(rep.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, warning := range rep.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
		b.WriteString("\n")
	}

	if len(rep.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, rec := range rep.Errors {
			if rec.Rule != "" {
				fmt.Fprintf(&b, "  [%s] %s (rule %s): %s\n", rec.Kind, rec.File, rec.Rule, rec.Message)
			} else {
				fmt.Fprintf(&b, "  [%s] %s: %s\n", rec.Kind, rec.File, rec.Message)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Files Scanned:   %d\n", rep.Counters.FilesScanned)
	fmt.Fprintf(&b, "Files Modified:  %d\n", rep.Counters.FilesModified)
	fmt.Fprintf(&b, "Patches Applied: %d\n", rep.Counters.Applied)
	fmt.Fprintf(&b, "Patches Skipped: %d\n", rep.Counters.Skipped)
	fmt.Fprintf(&b, "Errors:          %d\n", rep.Counters.Errors)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Errorf("writing text report: %w", err)
	}

	return nil
}
