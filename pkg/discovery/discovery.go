// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package discovery implements FileDiscovery: a pre-order walk of a
// target directory that yields every Python source file not excluded by
// the ignore rules. The walk targets a single `.py` extension and
// materializes its result as a plain slice once, before the
// AstAnalyzer fan-out, rather than exposing a restartable iterator.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	"github.com/kraklabs/pyxray/internal/logging"
	"github.com/kraklabs/pyxray/internal/metrics"
	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultExcludeDirs are directory names excluded at any depth: any path
// segment equal to one of these excludes the whole subtree.
var DefaultExcludeDirs = []string{
	".git", ".hg", ".svn",
	"__pycache__", ".mypy_cache", ".pytest_cache", ".ruff_cache", ".tox", ".nox",
	"venv", ".venv", "env", ".env", "virtualenv",
	"node_modules", "dist", "build", ".eggs", "*.egg-info",
	".idea", ".vscode",
}

// DefaultExcludeGlobs are file-level glob patterns excluded by default.
var DefaultExcludeGlobs = []string{
	"*.pyc", "*.pyo", "*.pyd",
	"*.so", "*.egg",
}

// entryPointNames is the fixed set used by orphan detection (§4.3) and
// EntryPoint discovery (§4.8); kept here since FileDiscovery is the first
// component to see a file's base name.
var entryPointNames = map[string]bool{
	"main.py": true, "__main__.py": true, "cli.py": true, "app.py": true,
	"wsgi.py": true, "asgi.py": true, "setup.py": true, "manage.py": true,
	"conftest.py": true,
}

// Discoverer walks a target directory and materializes FileRecords.
type Discoverer struct {
	logger *slog.Logger

	excludeDirs  []string
	excludeGlobs []string
	maxFileSize  int64
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the structured logger; nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) { d.logger = logging.Default(logger) }
}

// WithExtraExcludeGlobs appends caller-supplied glob patterns to the
// built-in defaults (spec §4.1: "a default set of file globs, and
// caller-supplied additions").
func WithExtraExcludeGlobs(globs ...string) Option {
	return func(d *Discoverer) { d.excludeGlobs = append(d.excludeGlobs, globs...) }
}

// WithExtraExcludeDirs appends caller-supplied directory names to the
// built-in defaults.
func WithExtraExcludeDirs(dirs ...string) Option {
	return func(d *Discoverer) { d.excludeDirs = append(d.excludeDirs, dirs...) }
}

// WithMaxFileSize bounds the size (in bytes) of files that will be read;
// oversized files are recorded as unreadable rather than skipped silently,
// matching §4.1's "unreadable files are recorded, not skipped silently".
func WithMaxFileSize(n int64) Option {
	return func(d *Discoverer) { d.maxFileSize = n }
}

// New builds a Discoverer with the built-in exclude sets plus any options.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		logger:       slog.Default(),
		excludeDirs:  append([]string(nil), DefaultExcludeDirs...),
		excludeGlobs: append([]string(nil), DefaultExcludeGlobs...),
		maxFileSize:  10 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is FileDiscovery's output: the ordered FileRecords plus the
// resolved absolute root, used downstream to compute ModulePaths.
type Result struct {
	Root  string
	Files []model.FileRecord
}

// Walk performs the pre-order traversal described in spec §4.1. Symlinks
// are followed only if they resolve inside target; everything else that
// fails to stat is recorded as unreadable rather than dropped.
func (d *Discoverer) Walk(target string) (*Result, error) {
	root, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve target: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat target: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target is not a directory: %s", root)
	}

	var files []model.FileRecord
	var unreadable, discovered int

	walkErr := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			d.logger.Warn("discovery.walk.error", "path", p, "err", walkErr)
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if rel != "." && d.excludeDir(rel, entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(entry.Name(), ".py") {
			return nil
		}
		if d.excludeFile(rel) {
			return nil
		}

		resolved, linkErr := d.resolveSymlink(root, p)
		if linkErr != nil {
			unreadable++
			files = append(files, model.FileRecord{
				Module:      model.NewModulePath(rel),
				RelPath:     rel,
				ParseStatus: model.ParseStatusUnreadable,
			})
			return nil
		}

		fi, statErr := os.Stat(resolved)
		if statErr != nil {
			unreadable++
			files = append(files, model.FileRecord{
				Module:      model.NewModulePath(rel),
				RelPath:     rel,
				ParseStatus: model.ParseStatusUnreadable,
			})
			return nil
		}

		discovered++
		status := model.ParseStatusParsed
		if d.maxFileSize > 0 && fi.Size() > d.maxFileSize {
			status = model.ParseStatusUnreadable
			unreadable++
		}

		files = append(files, model.FileRecord{
			Module:      model.NewModulePath(rel),
			RelPath:     rel,
			AbsPath:     resolved,
			ByteLength:  fi.Size(),
			TokenEst:    fi.Size() / 4,
			ParseStatus: status,
			IsEntryName: entryPointNames[entry.Name()] || strings.HasPrefix(entry.Name(), "test_") || strings.HasSuffix(entry.Name(), "_test.py"),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk target: %w", walkErr)
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

	metrics.Registered().FilesDiscovered(discovered)
	metrics.Registered().FilesUnreadable(unreadable)
	d.logger.Info("discovery.walk.complete", "root", root, "files", len(files), "unreadable", unreadable)

	return &Result{Root: root, Files: files}, nil
}

// resolveSymlink follows symlinks and rejects any target escaping root.
func (d *Discoverer) resolveSymlink(root, p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("symlink escapes target: %s", p)
	}
	return resolved, nil
}

func (d *Discoverer) excludeDir(relPath, name string) bool {
	for _, dir := range d.excludeDirs {
		if matchesGlob(name, dir) || matchesGlob(relPath, dir) {
			return true
		}
	}
	return false
}

func (d *Discoverer) excludeFile(relPath string) bool {
	for _, pattern := range d.excludeGlobs {
		if matchesGlob(relPath, pattern) {
			return true
		}
	}
	return false
}
