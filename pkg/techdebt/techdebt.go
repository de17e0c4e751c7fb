// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package techdebt implements TechDebtScanner (§4.9): a case-insensitive
// regex scan for the six recognised debt markers, emitting the marker
// kind, file, line, and the text following the marker on that line. All
// six markers share one compiled regex applied to each line; only the
// first marker on a line is recorded.
package techdebt

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

var markerPattern = regexp.MustCompile(`(?i)#\s*(TODO|FIXME|HACK|XXX|BUG|OPTIMIZE)\b[:\s]*(.*)`)

// Reader loads a discovered file's source text on demand.
type Reader func(f model.FileRecord) (string, error)

// Scan implements TechDebtScanner over the full discovered file set.
func Scan(files []model.FileRecord, read Reader) []model.TechDebtMarker {
	var out []model.TechDebtMarker
	for _, f := range files {
		if f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(text, "\n") {
			m := markerPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, model.TechDebtMarker{
				Marker: strings.ToUpper(m[1]),
				File:   f.RelPath,
				Line:   i + 1,
				Text:   strings.TrimSpace(m[2]),
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
