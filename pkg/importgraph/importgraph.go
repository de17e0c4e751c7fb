// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package importgraph implements ImportGraph: relative-import resolution,
// internal/external/stdlib classification, layer assignment, hub
// detection, dependency distance, and strongly-connected-component-based
// cycle detection (§4.3).
//
// Resolution runs a fixed precedence walk against the set of modules
// FileDiscovery actually found before falling back to external/stdlib
// classification, then builds a proper directed graph over the result
// so hub detection, BFS distance, and Tarjan-style SCC cycle detection
// can run over it directly.
package importgraph

import (
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
	"github.com/kraklabs/pyxray/pkg/pyast"
)

// Thresholds configure layer classification (§4.3); defaults match spec.
type Thresholds struct {
	FoundationMinIn int
	FoundationMaxOut int
	OrchestrationMinOut int
	OrchestrationMaxIn  int
	HubTopK             int
}

// DefaultThresholds matches the spec's stated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{FoundationMinIn: 5, FoundationMaxOut: 3, OrchestrationMinOut: 5, OrchestrationMaxIn: 1, HubTopK: 10}
}

// stdlibTop is a built-in, version-agnostic sample of common standard
// library top-level module names, configurable via WithExtraStdlib
// (§9 Open Question: "do not hard-code a version-specific list" — this is
// a seed set callers are expected to extend, not the interpreter's own
// inventory).
var stdlibTop = map[string]bool{
	"os": true, "sys": true, "re": true, "io": true, "json": true, "time": true,
	"math": true, "random": true, "itertools": true, "functools": true,
	"collections": true, "typing": true, "dataclasses": true, "enum": true,
	"abc": true, "asyncio": true, "threading": true, "multiprocessing": true,
	"subprocess": true, "socket": true, "http": true, "urllib": true,
	"logging": true, "unittest": true, "pathlib": true, "shutil": true,
	"copy": true, "pickle": true, "hashlib": true, "hmac": true, "base64": true,
	"uuid": true, "datetime": true, "decimal": true, "contextlib": true,
	"inspect": true, "traceback": true, "warnings": true, "weakref": true,
	"csv": true, "sqlite3": true, "xml": true, "html": true, "email": true,
	"argparse": true, "configparser": true, "tempfile": true, "glob": true,
	"string": true, "struct": true, "array": true, "queue": true,
	"signal": true, "platform": true, "importlib": true, "pkgutil": true,
}

// Graph is the resolved, queryable import graph for one analysis run.
type Graph struct {
	thresholds Thresholds
	stdlib     map[string]bool

	modules map[model.ModulePath]bool
	topDirs map[string]bool

	edges []model.ImportEdge
	adj   map[model.ModulePath][]model.ModulePath // forward (imports)
	radj  map[model.ModulePath][]model.ModulePath // reverse (imported_by)
}

// Option configures graph construction.
type Option func(*Graph)

// WithExtraStdlib adds top-level module names to the stdlib seed set.
func WithExtraStdlib(names ...string) Option {
	return func(g *Graph) {
		for _, n := range names {
			g.stdlib[n] = true
		}
	}
}

// WithThresholds overrides the default layer-classification thresholds.
func WithThresholds(t Thresholds) Option {
	return func(g *Graph) { g.thresholds = t }
}

// Build constructs a Graph from every file's own ModulePath, its
// top-level directory name, and its raw ImportRefs (as emitted by
// pkg/pyast), resolving relative imports and classifying each edge per
// the precedence rules in §4.3.
func Build(files []model.FileRecord, imports map[model.ModulePath][]pyast.ImportRef, opts ...Option) *Graph {
	g := &Graph{
		thresholds: DefaultThresholds(),
		stdlib:     copyStdlib(),
		modules:    map[model.ModulePath]bool{},
		topDirs:    map[string]bool{},
		adj:        map[model.ModulePath][]model.ModulePath{},
		radj:       map[model.ModulePath][]model.ModulePath{},
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, f := range files {
		g.modules[f.Module] = true
		if parts := strings.SplitN(f.RelPath, "/", 2); len(parts) == 2 {
			g.topDirs[parts[0]] = true
		}
	}

	for source, refs := range imports {
		for _, ref := range refs {
			target := g.resolveTarget(source, ref)
			if target == "" {
				continue
			}
			kind := g.classify(target)
			edge := model.ImportEdge{Source: source, Target: model.ModulePath(target), Kind: kind, Alias: ref.Alias}
			g.edges = append(g.edges, edge)
			if kind == model.ImportKindInternal {
				tm := model.ModulePath(target)
				g.adj[source] = append(g.adj[source], tm)
				g.radj[tm] = append(g.radj[tm], source)
			}
		}
	}

	return g
}

func copyStdlib() map[string]bool {
	out := make(map[string]bool, len(stdlibTop))
	for k := range stdlibTop {
		out[k] = true
	}
	return out
}

// resolveTarget turns one raw ImportRef into a dotted target string,
// resolving relative imports using the importing file's own module path
// and the dot-count level (§4.3).
func (g *Graph) resolveTarget(source model.ModulePath, ref pyast.ImportRef) string {
	if ref.Level == 0 {
		return ref.ModulePath
	}
	segments := strings.Split(string(source), ".")
	// One leading dot means "the package containing this module" (strip
	// the module's own trailing segment); each additional dot strips one
	// more. This treats every ModulePath as a plain module rather than a
	// package root, which under-resolves `from . import x` written
	// inside an __init__.py (§9 Open Question on namespace packages).
	strip := ref.Level
	if strip > len(segments) {
		strip = len(segments)
	}
	base := segments[:len(segments)-strip]
	if ref.ModulePath == "" {
		return strings.Join(base, ".")
	}
	return strings.Join(append(append([]string{}, base...), strings.Split(ref.ModulePath, ".")...), ".")
}

// classify applies the §4.3 target-resolution precedence.
func (g *Graph) classify(target string) model.ImportKind {
	tm := model.ModulePath(target)
	if g.modules[tm] {
		return model.ImportKindInternal
	}
	// Prefix match: module imports a sub-symbol of an existing module.
	var longest string
	for m := range g.modules {
		ms := string(m)
		if ms == target {
			continue
		}
		if strings.HasPrefix(target, ms+".") && len(ms) > len(longest) {
			longest = ms
		}
	}
	if longest != "" {
		return model.ImportKindInternal
	}
	top := strings.SplitN(target, ".", 2)[0]
	if g.topDirs[top] {
		return model.ImportKindInternal
	}
	if g.stdlib[top] {
		return model.ImportKindStdlib
	}
	return model.ImportKindExternal
}

// Summarize computes the serializable GraphSummary: layers, hubs,
// circulars, and orphans. Dependency distances are not part of it;
// Distances computes them on request.
func (g *Graph) Summarize(entryNames map[model.ModulePath]bool) model.GraphSummary {
	layers := g.classifyLayers()
	return model.GraphSummary{
		Edges:     g.edges,
		Layers:    layers,
		Hubs:      g.hubModules(),
		Circulars: g.circularPairs(),
		Orphans:   g.orphans(entryNames),
	}
}

func (g *Graph) classifyLayers() map[model.ModulePath]model.Layer {
	layers := make(map[model.ModulePath]model.Layer, len(g.modules))
	for m := range g.modules {
		in := len(g.radj[m])
		out := len(g.adj[m])
		switch {
		case in == 0 && out == 0:
			layers[m] = model.LayerLeaf
		case in >= g.thresholds.FoundationMinIn && out <= g.thresholds.FoundationMaxOut:
			layers[m] = model.LayerFoundation
		case out >= g.thresholds.OrchestrationMinOut && in <= g.thresholds.OrchestrationMaxIn:
			layers[m] = model.LayerOrchestration
		default:
			layers[m] = model.LayerCore
		}
	}
	return layers
}

func (g *Graph) hubModules() []model.ModulePath {
	type scored struct {
		m     model.ModulePath
		score int
	}
	var all []scored
	for m := range g.modules {
		all = append(all, scored{m, len(g.adj[m]) + len(g.radj[m])})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].m < all[j].m
	})
	k := g.thresholds.HubTopK
	if k > len(all) {
		k = len(all)
	}
	out := make([]model.ModulePath, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, all[i].m)
	}
	return out
}

// Distances runs BFS from every node and returns only finite distances,
// as a nested map: from -> to -> hops.
func (g *Graph) Distances() map[model.ModulePath]map[model.ModulePath]int {
	out := make(map[model.ModulePath]map[model.ModulePath]int, len(g.modules))
	for start := range g.modules {
		out[start] = g.bfs(start)
	}
	return out
}

func (g *Graph) bfs(start model.ModulePath) map[model.ModulePath]int {
	dist := map[model.ModulePath]int{start: 0}
	queue := []model.ModulePath{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.adj[cur] {
			if _, ok := dist[next]; ok {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	delete(dist, start)
	return dist
}

// circularPairs finds every SCC of size >= 2 using Tarjan's algorithm and
// returns every pair of modules within one, canonicalised and sorted; the
// SCCs themselves are not returned as sets.
func (g *Graph) circularPairs() [][2]model.ModulePath {
	sccs := g.tarjanSCCs()
	var pairs [][2]model.ModulePath
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		for i := 0; i < len(scc); i++ {
			for j := i + 1; j < len(scc); j++ {
				a, b := scc[i], scc[j]
				if a > b {
					a, b = b, a
				}
				pairs = append(pairs, [2]model.ModulePath{a, b})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// tarjanSCCs runs Tarjan's strongly-connected-components algorithm over
// the internal-edge adjacency.
func (g *Graph) tarjanSCCs() [][]model.ModulePath {
	index := 0
	indices := map[model.ModulePath]int{}
	lowlink := map[model.ModulePath]int{}
	onStack := map[model.ModulePath]bool{}
	var stack []model.ModulePath
	var sccs [][]model.ModulePath

	var nodes []model.ModulePath
	for m := range g.modules {
		nodes = append(nodes, m)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var strongconnect func(v model.ModulePath)
	strongconnect = func(v model.ModulePath) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []model.ModulePath
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range nodes {
		if _, visited := indices[v]; !visited {
			strongconnect(v)
		}
	}
	return sccs
}

// entryPatternNames is the fixed set of file names considered entry
// points for orphan exemption (§4.3); test_*/ *_test.py are matched by
// prefix/suffix at the caller via FileRecord.IsEntryName.
var entryPatternNames = map[string]bool{
	"main": true, "__main__": true, "cli": true, "app": true,
	"wsgi": true, "asgi": true, "setup": true, "manage": true, "conftest": true,
}

// orphans returns in-degree-zero modules that are not exempted by an
// entry-point pattern. entryNames carries the FileDiscovery-computed
// IsEntryName flag, keyed by ModulePath.
func (g *Graph) orphans(entryNames map[model.ModulePath]bool) []model.ModulePath {
	var out []model.ModulePath
	for m := range g.modules {
		if len(g.radj[m]) > 0 {
			continue
		}
		if entryNames[m] {
			continue
		}
		leaf := string(m)
		if idx := strings.LastIndex(leaf, "."); idx >= 0 {
			leaf = leaf[idx+1:]
		}
		if entryPatternNames[leaf] {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
