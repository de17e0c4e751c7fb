// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"regexp"
	"sort"

	"github.com/kraklabs/pyxray/pkg/model"
)

var (
	osGetenvCall       = regexp.MustCompile(`os\.getenv\s*\(`)
	osEnvironGetCall   = regexp.MustCompile(`os\.environ\.get\s*\(`)
	osEnvironSubscript = regexp.MustCompile(`os\.environ\[\s*["']([^"']+)["']\s*\]`)
)

// EnvVars implements GapFeatures' environment-variable sub-feature (§4.8):
// every os.getenv / os.environ.get call and os.environ[...] subscript is
// recorded with its name, default text (empty means required), and
// location.
func EnvVars(files []model.FileRecord, read Reader) []model.EnvVar {
	var out []model.EnvVar
	for _, f := range files {
		if f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}

		for _, loc := range osGetenvCall.FindAllStringIndex(text, -1) {
			out = append(out, parseGetenvCall(text, loc[1]-1, f.RelPath)...)
		}
		for _, loc := range osEnvironGetCall.FindAllStringIndex(text, -1) {
			out = append(out, parseGetenvCall(text, loc[1]-1, f.RelPath)...)
		}
		for _, m := range osEnvironSubscript.FindAllStringSubmatchIndex(text, -1) {
			out = append(out, model.EnvVar{
				Name:     text[m[2]:m[3]],
				Required: true,
				File:     f.RelPath,
				Line:     lineOf(text, m[0]),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// parseGetenvCall handles both os.getenv("NAME"[, default]) and
// os.environ.get("NAME"[, default]); both take the same positional shape.
func parseGetenvCall(text string, openParenIdx int, relPath string) []model.EnvVar {
	argsText, ok := extractArgs(text, openParenIdx)
	if !ok {
		return nil
	}
	parts := splitTopLevel(argsText)
	if len(parts) == 0 {
		return nil
	}
	name := unquote(parts[0])
	if name == parts[0] {
		// not a string literal name; not a var reference we can extract
		return nil
	}
	ev := model.EnvVar{
		Name: name,
		File: relPath,
		Line: lineOf(text, openParenIdx),
	}
	if len(parts) > 1 {
		ev.Default = parts[1]
	} else {
		ev.Required = true
	}
	return []model.EnvVar{ev}
}
