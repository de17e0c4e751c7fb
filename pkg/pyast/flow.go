// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pyast

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
)

// FlowEventKind is the syntactic event kind captured for LogicMap
// rendering (§4.6). Side-effect classification of FlowCall targets is
// left to pkg/sideeffect, which runs after this single AST pass.
type FlowEventKind string

const (
	FlowTest       FlowEventKind = "test"        // conditional test
	FlowFor        FlowEventKind = "for"         // for-loop header
	FlowWhile      FlowEventKind = "while"       // while-loop header
	FlowTry        FlowEventKind = "try"         // try-block header
	FlowExcept     FlowEventKind = "except"      // exception handler
	FlowCall       FlowEventKind = "call"        // any call, classified later
	FlowSelfAssign FlowEventKind = "self_assign" // attribute assignment on self
	FlowInput      FlowEventKind = "input"       // recognised external-input pattern
	FlowReturn     FlowEventKind = "return"      // explicit return
)

// FlowEvent is one line of raw material for a LogicMap: a syntactic event
// with its source text and nesting depth, prior to truncation/elision and
// prior to side-effect-category lookup (both done downstream in
// pkg/hotspots, which owns the rendering budget).
type FlowEvent struct {
	Kind  FlowEventKind
	Text  string
	Line  int
	Depth int
}

// inputPatterns recognises external-input call targets (§4.6's `<pattern>`
// row, e.g. "input(", "request."), evaluated against a call's leading
// identifier the same way pkg/sideeffect evaluates its own categories.
var inputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^input$`),
	regexp.MustCompile(`^request\.`),
	regexp.MustCompile(`^sys\.stdin`),
	regexp.MustCompile(`^click\.prompt$`),
}

func isInputCall(target string) bool {
	for _, p := range inputPatterns {
		if p.MatchString(target) {
			return true
		}
	}
	return false
}

// walkFlowEvents walks body recording one FlowEvent per recognised
// construct, in source order, with depth incremented for each nested
// block (§4.6: "nesting is rendered by two-space indentation per
// level"). It shares call-target extraction with walkCallSites but does
// not reuse its accumulation, since flow events need in-order
// interleaving with conditionals/loops that call-site extraction ignores.
func (w *walker) walkFlowEvents(node *sitter.Node, key string, depth int) {
	if node == nil || depth > maxRecurseDepth {
		return
	}
	switch node.Type() {
	case "if_statement", "elif_clause", "conditional_expression":
		if cond := node.ChildByFieldName("condition"); cond != nil {
			w.appendFlow(key, FlowTest, w.truncate(w.text(cond)), line(node), depth)
		}
	case "for_statement":
		left := w.text(node.ChildByFieldName("left"))
		right := w.text(node.ChildByFieldName("right"))
		w.appendFlow(key, FlowFor, w.truncate("for "+left+" in "+right+":"), line(node), depth)
	case "while_statement":
		cond := w.text(node.ChildByFieldName("condition"))
		w.appendFlow(key, FlowWhile, w.truncate("while "+cond+":"), line(node), depth)
	case "try_statement":
		w.appendFlow(key, FlowTry, "try:", line(node), depth)
	case "except_clause":
		excType := ""
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c.Type() != "except" && c.Type() != ":" && c.Type() != "as" && c.Type() != "identifier" {
				excType = w.text(c)
				break
			}
		}
		w.appendFlow(key, FlowExcept, excType, line(node), depth)
	case "return_statement":
		expr := ""
		if node.ChildCount() > 1 {
			expr = w.text(node.Child(1))
		}
		w.appendFlow(key, FlowReturn, w.truncate(expr), line(node), depth)
	case "call":
		if cs := w.classifySingleCallSite(node, key); cs != nil {
			if isInputCall(cs.Target) {
				w.appendFlow(key, FlowInput, cs.Target, line(node), depth)
			} else {
				w.appendFlow(key, FlowCall, cs.Target, line(node), depth)
			}
		}
	case "assignment":
		if left := node.ChildByFieldName("left"); left != nil && left.Type() == "attribute" {
			obj := left.ChildByFieldName("object")
			attr := left.ChildByFieldName("attribute")
			if obj != nil && attr != nil && w.text(obj) == "self" {
				w.appendFlow(key, FlowSelfAssign, "self."+w.text(attr), line(node), depth)
			}
		}
	}

	childDepth := depth
	switch node.Type() {
	case "if_statement", "elif_clause", "for_statement", "while_statement",
		"try_statement", "except_clause", "function_definition", "class_definition":
		childDepth = depth + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.walkFlowEvents(node.Child(i), key, childDepth)
	}
}

func (w *walker) appendFlow(key string, kind FlowEventKind, text string, ln, depth int) {
	if w.flowEvents == nil {
		w.flowEvents = map[string][]FlowEvent{}
	}
	w.flowEvents[key] = append(w.flowEvents[key], FlowEvent{Kind: kind, Text: text, Line: ln, Depth: depth})
}
