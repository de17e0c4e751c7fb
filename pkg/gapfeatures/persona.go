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

// personaExcerptLen is the minimum literal length GapFeatures treats as
// plausibly an embedded agent/LLM prompt rather than a docstring or
// ordinary message string.
const personaExcerptLen = 200

// promptHintPattern is applied against a candidate literal's own text to
// decide whether it reads like a prompt rather than arbitrary long prose
// (a docstring, a SQL statement, a block comment).
var promptHintPattern = regexp.MustCompile(`(?i)\byou are\b|\bassistant\b|\bsystem prompt\b|\binstructions?:\b|\brespond\b`)

// Personas implements GapFeatures' persona-map sub-feature: long string
// literals in agents/*.py or prompts/*.py that resemble an LLM prompt.
func Personas(files []model.FileRecord, read Reader) []model.PersonaExcerpt {
	var out []model.PersonaExcerpt
	for _, f := range files {
		if f.ParseStatus != model.ParseStatusParsed || !inPersonaDir(f.RelPath) {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}
		for _, lit := range extractTripleQuoted(text) {
			if len(lit) < personaExcerptLen || !promptHintPattern.MatchString(lit) {
				continue
			}
			excerpt := lit
			if len(excerpt) > personaExcerptLen {
				excerpt = excerpt[:personaExcerptLen]
			}
			out = append(out, model.PersonaExcerpt{RelPath: f.RelPath, Excerpt: excerpt})
			break // one representative excerpt per file
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}

func inPersonaDir(relPath string) bool {
	dir := filepath.Base(filepath.Dir(relPath))
	return dir == "agents" || dir == "prompts"
}

// extractTripleQuoted returns the body text of every """..."""/'''...'''
// string literal in src.
func extractTripleQuoted(src string) []string {
	var out []string
	for _, quote := range []string{`"""`, `'''`} {
		offset := 0
		for {
			i := strings.Index(src[offset:], quote)
			if i < 0 {
				break
			}
			i += offset
			j := strings.Index(src[i+3:], quote)
			if j < 0 {
				break
			}
			j += i + 3
			out = append(out, src[i+3:j])
			offset = j + 3
		}
	}
	return out
}
