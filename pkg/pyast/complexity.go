// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pyast

import sitter "github.com/smacker/go-tree-sitter"

// complexityOf computes cyclomatic complexity over a function/method body
// per §4.8: one branch point each for if/elif, for, while, except,
// boolean-operator terms beyond the first, conditional expressions,
// comprehension `if` clauses, and match-case arms. Complexity starts at 1
// (the single straight-line path) and body==nil (no body, e.g. a stub)
// also returns 1.
func complexityOf(body *sitter.Node) int {
	if body == nil {
		return 1
	}
	c := 1
	walkComplexity(body, &c, 0)
	return c
}

func walkComplexity(node *sitter.Node, c *int, depth int) {
	if node == nil || depth > maxRecurseDepth {
		return
	}
	switch node.Type() {
	case "if_statement", "elif_clause":
		*c++
	case "for_statement", "while_statement":
		*c++
	case "except_clause":
		*c++
	case "conditional_expression":
		*c++
	case "boolean_operator":
		*c++
	case "if_clause":
		// comprehension filter: [x for x in y if cond]
		*c++
	case "match_statement":
		// match itself doesn't branch; its case_clause children do.
	case "case_clause":
		*c++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkComplexity(node.Child(i), c, depth+1)
	}
}
