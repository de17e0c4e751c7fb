// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"regexp"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultRosettaMaxLines bounds the candidate test file's own length
// (§4.8: "≤ 50 lines").
const DefaultRosettaMaxLines = 50

// fixturePatterns count the variety of test idioms a candidate file uses;
// the Rosetta-Stone pick is the qualifying file using the widest variety,
// not simply the one with the most matches. Among files of equal variety
// the first one in testFiles order is kept.
var fixturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`@pytest\.fixture`),
	regexp.MustCompile(`\bmock\.|\bMagicMock\(|\bpatch\(`),
	regexp.MustCompile(`\bassert\s`),
	regexp.MustCompile(`\bwith\s+pytest\.raises\(`),
	regexp.MustCompile(`\bparametrize\(`),
}

// TestExample implements GapFeatures' Rosetta-Stone sub-feature: among
// test files no longer than DefaultRosettaMaxLines, picks the one
// exercising the greatest variety of fixture/mock/assert idioms.
func TestExample(testFiles []model.FileRecord, read Reader) *model.TestExample {
	var best *model.TestExample
	bestVariety := -1

	for _, f := range testFiles {
		if f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}
		if strings.Count(text, "\n")+1 > DefaultRosettaMaxLines {
			continue
		}
		variety := 0
		for _, p := range fixturePatterns {
			if p.MatchString(text) {
				variety++
			}
		}
		if variety > bestVariety {
			bestVariety = variety
			best = &model.TestExample{RelPath: f.RelPath, Text: text}
		}
	}
	return best
}
