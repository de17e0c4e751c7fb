// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/kraklabs/pyxray/pkg/model"
)

// pyprojectTool is the narrow slice of pyproject.toml this reads: the
// ruff and flake8 sub-tables under [tool]. ruff.toml carries the same
// line-length/select/ignore keys at its top level (or under [lint] in
// newer ruff releases), so the same shape is reused for both files.
type pyprojectTool struct {
	Tool struct {
		Ruff   ruffTable `toml:"ruff"`
		Flake8 ruffTable `toml:"flake8"`
	} `toml:"tool"`
}

type ruffTable struct {
	LineLength int       `toml:"line-length"`
	Select     []string  `toml:"select"`
	Ignore     []string  `toml:"ignore"`
	Lint       *ruffLint `toml:"lint"`
}

type ruffLint struct {
	Select []string `toml:"select"`
	Ignore []string `toml:"ignore"`
}

// LinterRules implements GapFeatures' linter sub-feature (§4.8): reads
// pyproject.toml ([tool.ruff] / [tool.flake8]), ruff.toml, then .flake8,
// in that order, stopping at the first one found. A parse failure or a
// total absence of config yields an empty LinterRules, never an error.
func LinterRules(root string) model.LinterRules {
	if rules, ok := readPyproject(filepath.Join(root, "pyproject.toml")); ok {
		return rules
	}
	if rules, ok := readRuffToml(filepath.Join(root, "ruff.toml")); ok {
		return rules
	}
	if rules, ok := readFlake8Ini(filepath.Join(root, ".flake8")); ok {
		return rules
	}
	return model.LinterRules{}
}

func readPyproject(path string) (model.LinterRules, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LinterRules{}, false
	}
	var doc pyprojectTool
	if err := toml.Unmarshal(data, &doc); err != nil {
		return model.LinterRules{}, false
	}

	rules := model.LinterRules{Source: "pyproject.toml"}
	switch {
	case len(doc.Tool.Ruff.Select) > 0 || len(doc.Tool.Ruff.Ignore) > 0 || doc.Tool.Ruff.LineLength > 0:
		rules.LineLength = doc.Tool.Ruff.LineLength
		rules.Select, rules.Ignore = resolveRuffLists(doc.Tool.Ruff)
	case len(doc.Tool.Flake8.Select) > 0 || len(doc.Tool.Flake8.Ignore) > 0 || doc.Tool.Flake8.LineLength > 0:
		rules.LineLength = doc.Tool.Flake8.LineLength
		rules.Select = doc.Tool.Flake8.Select
		rules.Ignore = doc.Tool.Flake8.Ignore
	default:
		return model.LinterRules{}, false
	}
	return rules, true
}

func resolveRuffLists(t ruffTable) (select_, ignore []string) {
	if t.Lint != nil && (len(t.Lint.Select) > 0 || len(t.Lint.Ignore) > 0) {
		return t.Lint.Select, t.Lint.Ignore
	}
	return t.Select, t.Ignore
}

func readRuffToml(path string) (model.LinterRules, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LinterRules{}, false
	}
	var doc ruffTable
	if err := toml.Unmarshal(data, &doc); err != nil {
		return model.LinterRules{}, false
	}
	sel, ign := resolveRuffLists(doc)
	if doc.LineLength == 0 && len(sel) == 0 && len(ign) == 0 {
		return model.LinterRules{}, false
	}
	return model.LinterRules{LineLength: doc.LineLength, Select: sel, Ignore: ign, Source: "ruff.toml"}, true
}

var (
	flake8Section   = regexp.MustCompile(`^\[(flake8|pep8)\]\s*$`)
	flake8KeyValue  = regexp.MustCompile(`^([\w-]+)\s*=\s*(.*)$`)
)

// readFlake8Ini parses the tiny subset of the .flake8 INI format GapFeatures
// needs: max-line-length, select, ignore under a [flake8] (or legacy
// [pep8]) section.
func readFlake8Ini(path string) (model.LinterRules, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LinterRules{}, false
	}

	rules := model.LinterRules{Source: ".flake8"}
	found := false
	inSection := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if flake8Section.MatchString(line) {
			inSection = true
			continue
		}
		if strings.HasPrefix(line, "[") {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		m := flake8KeyValue.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		found = true
		switch m[1] {
		case "max-line-length":
			if n, err := strconv.Atoi(strings.TrimSpace(m[2])); err == nil {
				rules.LineLength = n
			}
		case "select":
			rules.Select = splitCommaList(m[2])
		case "ignore", "extend-ignore":
			rules.Ignore = splitCommaList(m[2])
		}
	}
	return rules, found
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
