// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// agentClassThreshold: more than this many classes named "*Agent*" marks
// the codebase agent-oriented for the prose summary's domain heuristic.
const agentClassThreshold = 5

var (
	routeDecorator   = regexp.MustCompile(`@\w+\.(route|get|post|put|delete|patch)\s*\(`)
	dataframeImports = map[model.ModulePath]bool{"pandas": true, "numpy": true, "polars": true, "dask": true}
)

// ProseInput is everything the prose summary's template needs.
type ProseInput struct {
	Files       []model.FileRecord
	Layers      map[model.ModulePath]model.Layer
	Classes     map[model.ModulePath][]model.ClassRecord
	Imports     []model.ImportEdge
	EntryPoints []model.EntryPoint
	Read        Reader
}

// Prose implements GapFeatures' prose-summary sub-feature (§4.8): a
// template-filled paragraph naming file count, layer distribution, and the
// dominant domain heuristic.
func Prose(in ProseInput) model.ProseSummary {
	layerCounts := map[model.Layer]int{}
	for _, l := range in.Layers {
		layerCounts[l]++
	}

	domain := "general-purpose"
	switch {
	case countAgentClasses(in.Classes) > agentClassThreshold:
		domain = "agent-oriented"
	case hasRoutes(in.Files, in.Read):
		domain = "API-oriented"
	case hasDataframeImports(in.Imports):
		domain = "data-processing"
	case hasCLIEntryPoint(in.EntryPoints):
		domain = "CLI-tool"
	}

	text := fmt.Sprintf(
		"This codebase spans %d Python files across %d architectural layers "+
			"(%s) and appears to be primarily %s, based on its dominant class, "+
			"import, and entry-point shapes.",
		len(in.Files), len(layerCounts), describeLayers(layerCounts), domain,
	)
	return model.ProseSummary{Text: text}
}

func countAgentClasses(classes map[model.ModulePath][]model.ClassRecord) int {
	n := 0
	for _, cs := range classes {
		for _, c := range cs {
			if strings.Contains(c.Name, "Agent") {
				n++
			}
		}
	}
	return n
}

func hasRoutes(files []model.FileRecord, read Reader) bool {
	for _, f := range files {
		if f.ParseStatus != model.ParseStatusParsed {
			continue
		}
		text, err := read(f)
		if err != nil {
			continue
		}
		if routeDecorator.MatchString(text) {
			return true
		}
	}
	return false
}

func hasDataframeImports(edges []model.ImportEdge) bool {
	for _, e := range edges {
		top := e.Target
		if i := strings.IndexByte(string(e.Target), '.'); i >= 0 {
			top = model.ModulePath(string(e.Target)[:i])
		}
		if dataframeImports[top] {
			return true
		}
	}
	return false
}

func hasCLIEntryPoint(entries []model.EntryPoint) bool {
	for _, e := range entries {
		if e.Framework != model.CLIFrameworkNone {
			return true
		}
	}
	return false
}

func describeLayers(counts map[model.Layer]int) string {
	if len(counts) == 0 {
		return "no layers classified"
	}
	parts := make([]string, 0, len(counts))
	for _, l := range []model.Layer{model.LayerFoundation, model.LayerCore, model.LayerOrchestration, model.LayerLeaf} {
		if n, ok := counts[l]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, l))
		}
	}
	return strings.Join(parts, ", ")
}
