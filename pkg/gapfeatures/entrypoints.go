// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// scriptEntryNames mirrors the fixed file-name set FileDiscovery already
// tags via FileRecord.IsEntryName (§4.3), narrowed here to exclude the
// test_*/  *_test.py conventions which are not program entry surfaces.
var scriptEntryNames = map[string]bool{
	"main.py": true, "__main__.py": true, "cli.py": true, "app.py": true,
	"wsgi.py": true, "asgi.py": true, "manage.py": true,
	"setup.py": true, "conftest.py": true,
}

var mainGuardPattern = regexp.MustCompile(`if\s+__name__\s*==\s*["']__main__["']\s*:`)

var addArgumentCall = regexp.MustCompile(`\.add_argument\s*\(`)
var clickDecorator = regexp.MustCompile(`@click\.(option|argument)\s*\(`)
var typerDefault = regexp.MustCompile(`(\w+)\s*:\s*[^=,)]+\s*=\s*(typer\.(?:Option|Argument))\s*\(`)
var consoleScripts = regexp.MustCompile(`console_scripts`)

// EntryPoints implements GapFeatures' entry-point sub-feature (§4.8): the
// union of the fixed entry-point file names and any file containing a
// __main__ guard, each with a best-effort CLI-argument extraction.
func EntryPoints(files []model.FileRecord, read Reader) []model.EntryPoint {
	var out []model.EntryPoint
	for _, f := range files {
		if f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		base := filepath.Base(f.RelPath)
		isScriptName := scriptEntryNames[base]
		text, err := read(f)
		if err != nil {
			if isScriptName {
				out = append(out, model.EntryPoint{RelPath: f.RelPath, Kind: model.EntryKindScriptEntry, Framework: model.CLIFrameworkNone})
			}
			continue
		}

		hasGuard := mainGuardPattern.MatchString(text)
		if !isScriptName && !hasGuard {
			continue
		}

		kind := model.EntryKindScriptEntry
		switch {
		case hasGuard:
			kind = model.EntryKindMainGuard
		case base == "setup.py" && consoleScripts.MatchString(text):
			kind = model.EntryKindConsoleEntry
		}

		framework, args := extractCLIArgs(text)
		out = append(out, model.EntryPoint{RelPath: f.RelPath, Kind: kind, Framework: framework, Args: args})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}

// extractCLIArgs tries, in order, argparse add_argument calls, click
// option/argument decorators, and typer Option/Argument defaults.
func extractCLIArgs(text string) (model.CLIFramework, []model.CLIArgument) {
	if locs := addArgumentCall.FindAllStringIndex(text, -1); locs != nil {
		var args []model.CLIArgument
		for _, loc := range locs {
			argsText, ok := extractArgs(text, loc[1]-1)
			if !ok {
				continue
			}
			args = append(args, parseArgparseArgument(argsText))
		}
		if len(args) > 0 {
			return model.CLIFrameworkArgparse, args
		}
	}

	if locs := clickDecorator.FindAllStringSubmatchIndex(text, -1); locs != nil {
		var args []model.CLIArgument
		for _, loc := range locs {
			argsText, ok := extractArgs(text, loc[1]-1)
			if !ok {
				continue
			}
			args = append(args, parseClickOption(argsText))
		}
		if len(args) > 0 {
			return model.CLIFrameworkClick, args
		}
	}

	if matches := typerDefault.FindAllStringSubmatch(text, -1); matches != nil {
		var args []model.CLIArgument
		for _, m := range matches {
			args = append(args, model.CLIArgument{Name: m[1]})
		}
		if len(args) > 0 {
			return model.CLIFrameworkTyper, args
		}
	}

	return model.CLIFrameworkNone, nil
}

// parseArgparseArgument reads "--flag", required=True, default=..., help="...".
func parseArgparseArgument(argsText string) model.CLIArgument {
	arg := model.CLIArgument{}
	for i, part := range splitTopLevel(argsText) {
		if i == 0 && !strings.Contains(part, "=") {
			arg.Name = strings.TrimLeft(unquote(part), "-")
			continue
		}
		key, val, ok := splitKwarg(part)
		if !ok {
			continue
		}
		switch key {
		case "default":
			arg.Default = val
		case "required":
			arg.Required = strings.TrimSpace(val) == "True"
		case "help":
			arg.Help = unquote(val)
		}
	}
	if arg.Default == "" && !arg.Required {
		arg.Required = true
	}
	return arg
}

// parseClickOption reads "--flag", default=..., required=True, help="...".
func parseClickOption(argsText string) model.CLIArgument {
	arg := model.CLIArgument{}
	for i, part := range splitTopLevel(argsText) {
		if i == 0 && !strings.Contains(part, "=") {
			arg.Name = strings.TrimLeft(unquote(part), "-")
			continue
		}
		key, val, ok := splitKwarg(part)
		if !ok {
			continue
		}
		switch key {
		case "default":
			arg.Default = val
		case "required":
			arg.Required = strings.TrimSpace(val) == "True"
		case "help":
			arg.Help = unquote(val)
		}
	}
	return arg
}

func splitKwarg(part string) (key, val string, ok bool) {
	idx := strings.Index(part, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(part[:idx]), strings.TrimSpace(part[idx+1:]), true
}
