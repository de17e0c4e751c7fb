// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package importgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
	"github.com/kraklabs/pyxray/pkg/pyast"
)

func files(relPaths ...string) []model.FileRecord {
	var out []model.FileRecord
	for _, rp := range relPaths {
		out = append(out, model.FileRecord{RelPath: rp, Module: model.NewModulePath(rp)})
	}
	return out
}

func TestBuild_ClassifiesEdges(t *testing.T) {
	fs := files("pkg/a.py", "pkg/b.py")
	imports := map[model.ModulePath][]pyast.ImportRef{
		"pkg.a": {{ModulePath: "pkg.b"}, {ModulePath: "os"}, {ModulePath: "requests"}},
	}
	g := Build(fs, imports)
	summary := g.Summarize(nil)
	require.Len(t, summary.Edges, 3)

	byTarget := map[model.ModulePath]model.ImportKind{}
	for _, e := range summary.Edges {
		byTarget[e.Target] = e.Kind
	}
	assert.Equal(t, model.ImportKindInternal, byTarget["pkg.b"])
	assert.Equal(t, model.ImportKindStdlib, byTarget["os"])
	assert.Equal(t, model.ImportKindExternal, byTarget["requests"])
}

func TestBuild_RelativeImportResolution(t *testing.T) {
	fs := files("pkg/sub/mod.py", "pkg/sub/sibling.py", "pkg/top.py")
	imports := map[model.ModulePath][]pyast.ImportRef{
		"pkg.sub.mod": {
			{Level: 1, ModulePath: "sibling"}, // from . import sibling
			{Level: 2, ModulePath: ""},         // from .. import pkg (package itself)
		},
	}
	g := Build(fs, imports)
	summary := g.Summarize(nil)

	var targets []model.ModulePath
	for _, e := range summary.Edges {
		targets = append(targets, e.Target)
	}
	assert.Contains(t, targets, model.ModulePath("pkg.sub.sibling"))
}

func TestBuild_CircularDetection(t *testing.T) {
	fs := files("a.py", "b.py")
	imports := map[model.ModulePath][]pyast.ImportRef{
		"a": {{ModulePath: "b"}},
		"b": {{ModulePath: "a"}},
	}
	g := Build(fs, imports)
	summary := g.Summarize(nil)
	require.Len(t, summary.Circulars, 1)
	assert.Equal(t, model.ModulePath("a"), summary.Circulars[0][0])
	assert.Equal(t, model.ModulePath("b"), summary.Circulars[0][1])
}

func TestBuild_OrphanExemptsEntryPoints(t *testing.T) {
	fs := files("main.py", "orphan.py", "used.py", "user.py")
	imports := map[model.ModulePath][]pyast.ImportRef{
		"user": {{ModulePath: "used"}},
	}
	g := Build(fs, imports)
	summary := g.Summarize(nil)
	assert.Contains(t, summary.Orphans, model.ModulePath("orphan"))
	assert.NotContains(t, summary.Orphans, model.ModulePath("main"))
	assert.NotContains(t, summary.Orphans, model.ModulePath("used"))
}

func TestBuild_LayerClassification(t *testing.T) {
	fs := files("f1.py", "f2.py", "f3.py", "f4.py", "f5.py", "f6.py", "orch.py")
	imports := map[model.ModulePath][]pyast.ImportRef{
		"orch": {{ModulePath: "f1"}, {ModulePath: "f2"}, {ModulePath: "f3"}, {ModulePath: "f4"}, {ModulePath: "f5"}},
	}
	g := Build(fs, imports)
	summary := g.Summarize(nil)
	assert.Equal(t, model.LayerCore, summary.Layers["f1"]) // in=1 is below the foundation in-degree of 5
	assert.Equal(t, model.LayerOrchestration, summary.Layers["orch"])
	assert.Equal(t, model.LayerLeaf, summary.Layers["f6"])
}
