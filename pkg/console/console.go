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

package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 42 // base width for file paths
	countWidth = 14 // width for the rewrite count column
)

// 🎯 FileRewrite represents one file line for display
type FileRewrite struct {
	Path     string      // root-relative file path
	Rewrites int         // total matches across rules
	Rules    []RuleCount // per-rule counts in application order
	DryRun   bool        // reporting a would-be rewrite
	Failed   bool        // the rewrite did not reach disk
}

// 📦 RuleCount is one rule's contribution to a file line
type RuleCount struct {
	Rule  string
	Count int
}

// 📦 RunBanner describes the run being started
type RunBanner struct {
	Root    string // source tree being patched
	Profile string // catalog profile
	Arch    string // target architecture
	Spoof   bool   // GPU identity spoofing enabled
	DryRun  bool   // no writes will happen
}

// 📊 Summary is the final tally displayed after a run
type Summary struct {
	FilesScanned  int
	FilesChanged  int // files with at least one match
	FilesModified int // files whose rewrite reached disk
	Applied       int
	Skipped       int
	Errors        int
	DryRun        bool
}

// 🎯 Console renders user-facing run progress with colors
type Console struct {
	zlog    zerolog.Logger
	out     io.Writer
	mu      sync.Mutex
	current *RunBanner
	changes []FileRewrite
}

// 🏭 New creates a new console
func New(out io.Writer, level zerolog.Level) *Console {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Console{
		zlog: zlog,
		out:  out,
		mu:   sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the console from context
func FromContext(ctx context.Context) *Console {
	c, ok := ctx.Value(contextKey{}).(*Console)
	if !ok {
		panic("console not found in context")
	}
	return c
}

// 🎯 NewContext adds the console to context
func NewContext(ctx context.Context, c *Console) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// 📝 formatFileRewrite formats one file line for display
func (c *Console) formatFileRewrite(fr FileRewrite) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case fr.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
	case fr.DryRun:
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '⟳'
		symbolColor = color.FgBlue
	}

	noun := "rewrites"
	if fr.Rewrites == 1 {
		noun = "rewrite"
	}

	parts := make([]string, 0, len(fr.Rules))
	for _, rc := range fr.Rules {
		parts = append(parts, fmt.Sprintf("%s:%d", rc.Rule, rc.Count))
	}

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, fr.Path),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", countWidth, fmt.Sprintf("%d %s", fr.Rewrites, noun))),
		color.New(color.Faint).Sprint(strings.Join(parts, " ")))
}

// 📝 LogFileRewrite logs one file with its per-rule counts
func (c *Console) LogFileRewrite(ctx context.Context, fr FileRewrite) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Add to the running change list
	c.changes = append(c.changes, fr)

	// Format and print
	fmt.Fprintln(c.out, c.formatFileRewrite(fr))

	// Log to zerolog
	c.zlog.Info().
		Str("file", fr.Path).
		Int("rewrites", fr.Rewrites).
		Bool("dry_run", fr.DryRun).
		Bool("failed", fr.Failed).
		Msg("file rewrite")
}

// 📝 StartRun prints the run banner
func (c *Console) StartRun(ctx context.Context, banner RunBanner) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = &banner
	c.changes = nil

	// Print run header
	fmt.Fprintf(c.out, "[patching %s]\n",
		color.New(color.FgCyan).Sprint(banner.Root))

	spoof := "spoof on"
	if !banner.Spoof {
		spoof = "spoof off"
	}
	line := fmt.Sprintf("%s %s %s %s %s %s",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(banner.Profile),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(banner.Arch),
		color.New(color.Faint).Sprint("•"),
		spoof)
	if banner.DryRun {
		line += fmt.Sprintf(" %s %s",
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprint("dry run"))
	}
	fmt.Fprintln(c.out, line)

	// Log to zerolog
	c.zlog.Info().
		Str("root", banner.Root).
		Str("profile", banner.Profile).
		Str("arch", banner.Arch).
		Bool("gpu_spoof", banner.Spoof).
		Bool("dry_run", banner.DryRun).
		Msg("starting run")
}

// 📝 EndRun prints the final tally and clears the run state
func (c *Console) EndRun(ctx context.Context, s Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.zlog.Info().
			Str("root", c.current.Root).
			Int("files_changed", len(c.changes)).
			Int("applied", s.Applied).
			Int("errors", s.Errors).
			Msg("run complete")
	}
	c.current = nil
	c.changes = nil

	fmt.Fprintln(c.out)
	switch {
	case s.Errors > 0:
		fmt.Fprintf(c.out, "❌ %s\n", color.New(color.FgRed).Sprint(fmt.Sprintf(
			"completed with %d errors: %d patches applied across %d files",
			s.Errors, s.Applied, s.FilesChanged)))
	case s.DryRun:
		fmt.Fprintf(c.out, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(fmt.Sprintf(
			"dry run: %d patches would apply across %d of %d files",
			s.Applied, s.FilesChanged, s.FilesScanned)))
	default:
		fmt.Fprintf(c.out, "✅ %s\n", color.New(color.FgGreen).Sprint(fmt.Sprintf(
			"%d patches applied across %d files (%d scanned, %d rules skipped)",
			s.Applied, s.FilesModified, s.FilesScanned, s.Skipped)))
	}
}

// 📝 LogNewline logs a newline
func (c *Console) LogNewline() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
}

// 📝 Header logs a header
func (c *Console) Header(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	patchrcText := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(c.out, "\n%s %s\n\n", patchrcText, color.New(color.Faint).Sprint("• "+msg))
	c.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	c.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (c *Console) Warning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	c.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	c.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (c *Console) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	c.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (c *Console) Infof(format string, args ...interface{}) {
	c.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (c *Console) Warningf(format string, args ...interface{}) {
	c.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (c *Console) Errorf(format string, args ...interface{}) {
	c.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (c *Console) Successf(format string, args ...interface{}) {
	c.Success(fmt.Sprintf(format, args...))
}
