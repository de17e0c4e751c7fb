// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pyast

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/pyxray/pkg/model"
)

// maxCallSitesPerFunction bounds pathological generated files so one
// function body can't make a single file's parse unbounded.
const maxCallSitesPerFunction = 5000

// walkCallSites finds every `call` node within body (iteratively, via an
// explicit stack rather than recursion, to keep frame depth bounded on
// deeply nested bodies) and appends a classified CallSite for each to
// w.callSites. containingFunc is the qualified name ("Class.method" or
// "function") attributed to every call found in this body.
func (w *walker) walkCallSites(body *sitter.Node, containingFunc string) {
	type entry struct {
		node  *sitter.Node
		depth int
	}
	stack := []entry{{node: body, depth: 0}}
	found := 0

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.node == nil || e.depth > maxRecurseDepth {
			continue
		}
		if found >= maxCallSitesPerFunction {
			return
		}

		if e.node.Type() == "call" {
			if cs := w.classifySingleCallSite(e.node, containingFunc); cs != nil {
				w.callSites = append(w.callSites, *cs)
				found++
			}
		}

		childCount := int(e.node.ChildCount())
		for i := childCount - 1; i >= 0; i-- {
			stack = append(stack, entry{node: e.node.Child(i), depth: e.depth + 1})
		}
	}
}

// classifySingleCallSite extracts target and syntactic kind from one
// `call` node, mirroring extractSingleCallSite: identifier -> name call,
// attribute -> attribute call, anything else (subscript, chained call) ->
// subscript call, the catch-all bucket for "REGISTRY[key](...)" and
// similarly dynamic callees.
func (w *walker) classifySingleCallSite(node *sitter.Node, containingFunc string) *model.CallSite {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil && node.ChildCount() > 0 {
		fnNode = node.Child(0)
	}
	if fnNode == nil {
		return nil
	}

	cs := &model.CallSite{
		Source:         w.module,
		ContainingFunc: containingFunc,
		Line:           line(node),
	}

	switch fnNode.Type() {
	case "identifier":
		cs.Target = w.text(fnNode)
		cs.Kind = model.CallSiteNameCall
	case "attribute":
		obj := fnNode.ChildByFieldName("object")
		attr := fnNode.ChildByFieldName("attribute")
		if attr == nil {
			return nil
		}
		target := w.text(attr)
		if obj != nil {
			receiver := w.text(obj)
			if receiver != "" {
				target = receiver + "." + target
			}
		}
		cs.Target = target
		cs.Kind = model.CallSiteAttributeCall
	default:
		text := w.text(fnNode)
		if len(text) > 100 {
			text = text[:100]
		}
		cs.Target = text
		cs.Kind = model.CallSiteSubscriptCall
	}

	if cs.Target == "" {
		return nil
	}
	return cs
}
