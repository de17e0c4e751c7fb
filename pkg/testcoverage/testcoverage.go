// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package testcoverage implements TestCoverage (§4.9): enumeration and
// categorisation of test directories, fixture extraction from conftest.py,
// and a tested-vs-untested source-directory report. No test content is
// inspected beyond these textual facts — the Rosetta-Stone selection
// lives in pkg/gapfeatures since it is one of GapFeatures' named
// sub-features, not TestCoverage's.
//
// Test roots are recognised the same way FileDiscovery recognises
// entry-point names: a fixed set of base names checked per path
// segment. `def test_` and `@pytest.fixture` are picked up with one
// compiled regex each, applied to the raw source text.
package testcoverage

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// testRootNames are the directory base names recognised as test roots.
var testRootNames = map[string]bool{"tests": true, "test": true, "testing": true}

var testFuncPattern = regexp.MustCompile(`\bdef\s+test_\w*`)

var fixturePattern = regexp.MustCompile(`@pytest\.fixture(?:\([^)]*\))?\s*\n\s*(?:async\s+)?def\s+(\w+)`)

// Reader loads a discovered file's source text on demand.
type Reader func(f model.FileRecord) (string, error)

// Build implements TestCoverage over the full discovered file set.
func Build(files []model.FileRecord, read Reader) model.TestCoverageResult {
	buckets := map[string][]model.FileRecord{}
	testRootOf := map[string]string{}
	testDirNames := map[string]bool{}
	sourceDirs := map[string]bool{}

	for _, f := range files {
		root, category, ok := splitTestRoot(f.RelPath)
		if !ok {
			if top := firstSegment(f.RelPath); top != "" && !testRootNames[top] {
				sourceDirs[top] = true
			}
			continue
		}
		bucketKey := root
		if category != "" {
			bucketKey = root + "/" + category
			testDirNames[category] = true
		}
		buckets[bucketKey] = append(buckets[bucketKey], f)
		testRootOf[bucketKey] = root
	}

	var dirs []model.TestDirStats
	for bucketKey, bucketFiles := range buckets {
		category := ""
		if idx := strings.LastIndex(bucketKey, "/"); idx >= 0 {
			category = bucketKey[idx+1:]
		}
		funcCount := 0
		for _, f := range bucketFiles {
			if f.ParseStatus != model.ParseStatusParsed {
				continue
			}
			text, err := read(f)
			if err != nil {
				continue
			}
			funcCount += len(testFuncPattern.FindAllString(text, -1))
		}
		dirs = append(dirs, model.TestDirStats{
			RelPath:       bucketKey,
			FileCount:     len(bucketFiles),
			TestFuncCount: funcCount,
			Category:      category,
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].RelPath < dirs[j].RelPath })

	var fixtures []model.TestFixture
	for _, f := range files {
		if path.Base(f.RelPath) != "conftest.py" || f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}
		for _, m := range fixturePattern.FindAllStringSubmatchIndex(text, -1) {
			fixtures = append(fixtures, model.TestFixture{
				Name: text[m[2]:m[3]],
				File: f.RelPath,
				Line: lineOf(text, m[0]),
			})
		}
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].File != fixtures[j].File {
			return fixtures[i].File < fixtures[j].File
		}
		return fixtures[i].Line < fixtures[j].Line
	})

	var tested, untested []string
	for dir := range sourceDirs {
		if testDirNames[dir] {
			tested = append(tested, dir)
		} else {
			untested = append(untested, dir)
		}
	}
	sort.Strings(tested)
	sort.Strings(untested)

	return model.TestCoverageResult{
		Dirs:               dirs,
		Fixtures:           fixtures,
		TestedSourceDirs:   tested,
		UntestedSourceDirs: untested,
	}
}

// splitTestRoot finds the first path segment matching a recognised test
// root name and returns the root path up to and including it, plus the
// immediate next segment as the category (empty if the file sits directly
// in the root).
func splitTestRoot(relPath string) (root, category string, ok bool) {
	segments := strings.Split(relPath, "/")
	for i, seg := range segments {
		if !testRootNames[seg] {
			continue
		}
		root = strings.Join(segments[:i+1], "/")
		if i+2 < len(segments) {
			category = segments[i+1]
		}
		return root, category, true
	}
	return "", "", false
}

func firstSegment(relPath string) string {
	if idx := strings.IndexByte(relPath, '/'); idx >= 0 {
		return relPath[:idx]
	}
	return ""
}

func lineOf(src string, byteOffset int) int {
	line := 1
	for i := 0; i < byteOffset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
