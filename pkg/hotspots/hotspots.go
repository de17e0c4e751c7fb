// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package hotspots implements ComplexityHotspots and LogicMap rendering
// (§4.6): ranks functions/methods with complexity > 3, then renders the
// top-N (by complexity, ties broken by module, then qualified name) into the
// indentation-based symbolic flow rendering, applying side-effect
// classification, per-line truncation, and whole-body elision.
package hotspots

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
	"github.com/kraklabs/pyxray/pkg/pyast"
)

const (
	// DefaultTopN is the default count of highest-complexity functions
	// rendered into LogicMaps.
	DefaultTopN = 5
	// DefaultMaxLineLen truncates any single rendered flow line.
	DefaultMaxLineLen = 80
	// DefaultMaxBodyLines caps the rendered line count per function before
	// the tail is elided.
	DefaultMaxBodyLines = 30
	// complexityFloor: only functions strictly above this are hotspot
	// candidates at all (§4.6).
	complexityFloor = 3
)

// Options configure rendering; zero-value Options falls back to the
// package defaults via WithDefaults.
type Options struct {
	TopN         int
	MaxLineLen   int
	MaxBodyLines int
}

// WithDefaults fills any zero field of o with the package default.
func (o Options) WithDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.MaxLineLen <= 0 {
		o.MaxLineLen = DefaultMaxLineLen
	}
	if o.MaxBodyLines <= 0 {
		o.MaxBodyLines = DefaultMaxBodyLines
	}
	return o
}

// candidate is one function or method under consideration, carrying
// enough to both rank and, if selected, render it.
type candidate struct {
	module        model.ModulePath
	qualifiedName string
	signature     string
	docFirstLine  string
	complexity    int
}

// Input is everything hotspots needs, gathered by the orchestrator after
// AstAnalyzer and SideEffectDetector have both run. FileOf must be the
// same module-to-relpath mapping the SideEffectDetector pass used to
// stamp SideEffect.File, so the two line up on lookup.
type Input struct {
	Classes     map[model.ModulePath][]model.ClassRecord
	Funcs       map[model.ModulePath][]model.FunctionRecord
	FlowEvents  map[model.ModulePath]map[string][]pyast.FlowEvent
	SideEffects []model.SideEffect
	FileOf      func(model.ModulePath) string
}

// Build ranks candidates by complexity and renders LogicMaps for the
// top-N.
func Build(in Input, opts Options) []model.LogicMap {
	opts = opts.WithDefaults()

	var all []candidate
	for module, classes := range in.Classes {
		for _, cls := range classes {
			for _, m := range cls.Methods {
				if m.Complexity <= complexityFloor {
					continue
				}
				all = append(all, candidate{
					module:        module,
					qualifiedName: cls.Name + "." + m.Name,
					signature:     signatureOf(cls.Name+"."+m.Name, m.Params, m.ReturnAnnot),
					docFirstLine:  m.DocFirstLine,
					complexity:    m.Complexity,
				})
			}
		}
	}
	for module, funcs := range in.Funcs {
		for _, fn := range funcs {
			if fn.Complexity <= complexityFloor {
				continue
			}
			all = append(all, candidate{
				module:        module,
				qualifiedName: fn.Name,
				signature:     signatureOf(fn.Name, fn.Params, fn.ReturnAnnot),
				docFirstLine:  fn.DocFirstLine,
				complexity:    fn.Complexity,
			})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].complexity != all[j].complexity {
			return all[i].complexity > all[j].complexity
		}
		if all[i].module != all[j].module {
			return all[i].module < all[j].module
		}
		return all[i].qualifiedName < all[j].qualifiedName
	})

	sideEffectIndex := indexSideEffects(in.SideEffects)
	fileOf := in.FileOf
	if fileOf == nil {
		fileOf = func(m model.ModulePath) string { return string(m) }
	}

	n := opts.TopN
	if n > len(all) {
		n = len(all)
	}

	out := make([]model.LogicMap, 0, n)
	for i := 0; i < n; i++ {
		c := all[i]
		events := in.FlowEvents[c.module][c.qualifiedName]
		out = append(out, render(c, fileOf(c.module), events, sideEffectIndex, opts))
	}
	return out
}

func signatureOf(name string, params []model.Param, returnAnnot string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := p.Name
		if p.Annotation != "" {
			s += ": " + p.Annotation
		}
		if p.Default != "" {
			s += " = " + p.Default
		}
		parts = append(parts, s)
	}
	sig := fmt.Sprintf("def %s(%s)", name, strings.Join(parts, ", "))
	if returnAnnot != "" {
		sig += " -> " + returnAnnot
	}
	return sig
}

type sideEffectKey struct {
	file string
	line int
}

func indexSideEffects(effects []model.SideEffect) map[sideEffectKey]model.SideEffectCategory {
	idx := make(map[sideEffectKey]model.SideEffectCategory, len(effects))
	for _, se := range effects {
		idx[sideEffectKey{file: se.File, line: se.Line}] = se.Category
	}
	return idx
}

// render turns one candidate's raw FlowEvents into a LogicMap, applying
// the §4.6 symbol grammar, per-line truncation, and tail elision.
func render(c candidate, file string, events []pyast.FlowEvent, sideEffects map[sideEffectKey]model.SideEffectCategory, opts Options) model.LogicMap {
	lm := model.LogicMap{
		FunctionName: c.qualifiedName,
		Signature:    c.signature,
		DocFirstLine: c.docFirstLine,
		Complexity:   c.complexity,
	}

	var lines []string
	for _, ev := range events {
		line, sideEffect, stateMut, input := renderEvent(file, ev, sideEffects)
		if line == "" {
			continue
		}
		lines = append(lines, indent(ev.Depth)+truncateLine(line, opts.MaxLineLen))
		if sideEffect != "" {
			lm.SideEffects = append(lm.SideEffects, model.SideEffectCategory(sideEffect))
		}
		if stateMut != "" {
			lm.StateMutations = append(lm.StateMutations, stateMut)
		}
		if input != "" {
			lm.ExternalInputs = append(lm.ExternalInputs, input)
		}
	}

	lm.FullBodyBytes = totalBytes(lines)
	if len(lines) > opts.MaxBodyLines {
		remaining := len(lines) - opts.MaxBodyLines
		lines = lines[:opts.MaxBodyLines]
		lines = append(lines, fmt.Sprintf("… (%d more lines)", remaining))
	}
	lm.FlowLines = lines
	lm.RenderedBytes = totalBytes(lines)
	return lm
}

// renderEvent returns the rendered line (or "" to skip, e.g. an
// uncategorised call) plus any side-effect category / state mutation /
// external-input text it contributes to the LogicMap's summary fields.
func renderEvent(file string, ev pyast.FlowEvent, sideEffects map[sideEffectKey]model.SideEffectCategory) (line, sideEffect, stateMut, input string) {
	switch ev.Kind {
	case pyast.FlowTest:
		return "-> " + ev.Text + "?", "", "", ""
	case pyast.FlowFor:
		return "* " + ev.Text, "", "", ""
	case pyast.FlowWhile:
		return "* " + ev.Text, "", "", ""
	case pyast.FlowTry:
		return ev.Text, "", "", ""
	case pyast.FlowExcept:
		return "! except " + ev.Text, "", "", ""
	case pyast.FlowReturn:
		return "-> Return(" + ev.Text + ")", "", "", ""
	case pyast.FlowSelfAssign:
		return "{" + ev.Text + "}", "", ev.Text, ""
	case pyast.FlowInput:
		return ev.Text, "", "", ev.Text
	case pyast.FlowCall:
		if cat, ok := sideEffects[sideEffectKey{file: file, line: ev.Line}]; ok {
			return fmt.Sprintf("[%s: %s]", strings.ToUpper(string(cat)), ev.Text), string(cat), "", ""
		}
		return "", "", "", ""
	}
	return "", "", "", ""
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

func truncateLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func totalBytes(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	return n
}
