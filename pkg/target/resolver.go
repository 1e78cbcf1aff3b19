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

// Package target resolves which files inside a source tree a rule group
// applies to, via either an anchor-file probe or a broad glob.
package target

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Policy describes how a rule group locates the files it applies to.
// Exactly one strategy is active: AnchorName probes SearchRoots for the
// subtree that contains the anchor file, Glob enumerates the whole tree.
type Policy struct {
	Glob        string   // doublestar pattern matched against root-relative paths
	AnchorName  string   // exact file name that marks the effective subtree
	SearchRoots []string // candidate subtrees for the anchor probe, in priority order
	Excludes    []string // substrings that disqualify a root-relative path
}

// Anchored reports whether the policy uses the anchor-directory strategy.
func (p Policy) Anchored() bool {
	return p.AnchorName != ""
}

// 🔍 Resolver enumerates target files beneath one source root.
type Resolver struct {
	root     string
	excludes []string // run-level excludes, unioned with every policy's own
}

// 🏭 NewResolver creates a resolver for the given source root. A missing or
// non-directory root is a configuration error reported before any work is
// scheduled.
func NewResolver(root string, excludes ...string) (*Resolver, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("checking source root: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source root is not a directory: %s", root)
	}
	return &Resolver{root: filepath.Clean(root), excludes: excludes}, nil
}

// Root returns the cleaned source root path.
func (r *Resolver) Root() string {
	return r.root
}

// 🔍 Resolve returns the sorted root-relative slash paths of the files the
// policy targets. An empty result is not an error, it simply yields no work
// for that rule group.
func (r *Resolver) Resolve(ctx context.Context, p Policy) ([]string, error) {
	switch {
	case p.AnchorName != "":
		return r.resolveAnchor(ctx, p)
	case p.Glob != "":
		return r.resolveGlob(ctx, p)
	default:
		return nil, errors.Errorf("targeting policy needs an anchor name or a glob")
	}
}

// 🌐 resolveGlob walks the whole tree and keeps files matching the pattern.
func (r *Resolver) resolveGlob(ctx context.Context, p Policy) ([]string, error) {
	if !doublestar.ValidatePattern(p.Glob) {
		return nil, errors.Errorf("invalid glob pattern: %s", p.Glob)
	}

	excludes := r.combinedExcludes(p)
	var files []string

	err := fs.WalkDir(os.DirFS(r.root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return errors.Errorf("reading source root: %w", err)
			}
			// Unreadable subtrees are skipped, matching glob semantics.
			zerolog.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			if path != "." && isExcluded(path, excludes) {
				return fs.SkipDir
			}
			return nil
		}
		if isExcluded(path, excludes) {
			return nil
		}
		matched, merr := doublestar.Match(p.Glob, path)
		if merr != nil {
			return errors.Errorf("matching %q against %q: %w", path, p.Glob, merr)
		}
		if matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking source tree: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// 📌 resolveAnchor probes the candidate roots in priority order. The first
// candidate holding at least one anchor-named file becomes the effective
// subtree; the source root itself is the final fallback.
func (r *Resolver) resolveAnchor(ctx context.Context, p Policy) ([]string, error) {
	excludes := r.combinedExcludes(p)

	candidates := append(append([]string{}, p.SearchRoots...), ".")
	for _, sub := range candidates {
		files, err := r.anchorsUnder(ctx, sub, p.AnchorName, excludes)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			sort.Strings(files)
			zerolog.Ctx(ctx).Debug().
				Str("anchor", p.AnchorName).
				Str("subtree", sub).
				Int("files", len(files)).
				Msg("anchor subtree selected")
			return files, nil
		}
	}

	return nil, nil
}

// anchorsUnder collects anchor-named files beneath one candidate subtree.
// Candidates are slash paths relative to the resolver root ("." is the root
// itself); a missing candidate yields nothing rather than an error.
func (r *Resolver) anchorsUnder(ctx context.Context, sub, anchor string, excludes []string) ([]string, error) {
	if sub != "." {
		info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(sub)))
		if err != nil || !info.IsDir() {
			return nil, nil
		}
	}

	var files []string
	err := fs.WalkDir(os.DirFS(r.root), sub, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			if path != sub && isExcluded(path, excludes) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == anchor && !isExcluded(path, excludes) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", sub, err)
	}

	return files, nil
}

func (r *Resolver) combinedExcludes(p Policy) []string {
	out := make([]string, 0, len(p.Excludes)+len(r.excludes))
	out = append(out, p.Excludes...)
	out = append(out, r.excludes...)
	return out
}

// isExcluded reports whether any exclude substring occurs in the
// root-relative slash path.
func isExcluded(path string, excludes []string) bool {
	for _, ex := range excludes {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	return false
}
