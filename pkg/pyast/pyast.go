// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package pyast implements AstAnalyzer: a tree-sitter visitor over one
// Python source file that emits the skeleton records (classes, methods,
// functions, constants), cyclomatic complexity, call sites, and field
// extraction the rest of the pipeline fans out from.
//
// Each call constructs its own *sitter.Parser rather than sharing one,
// since tree-sitter parsers are not safe for concurrent use and this
// package is fanned out across many files at once. The file is parsed
// once; imports are collected by a recursive walk of the whole tree, the
// top-level statements are classified in a second walk, and each function
// or method body is walked separately for call sites
// (attribute/identifier/subscript forms), flow events, and cyclomatic
// complexity.
package pyast

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultMaxFileSize bounds the size of a single file this analyzer will
// attempt to parse; files beyond it are recorded unreadable upstream in
// pkg/discovery, so this is a second line of defense for callers that
// construct a FileResult directly.
const DefaultMaxFileSize = 5 * 1024 * 1024

// DefaultTruncateLen bounds the length of default-expression and
// constant-value source text kept in a FieldRecord/ConstantRecord.
const DefaultTruncateLen = 120

// Analyzer parses Python source into the pipeline's typed records.
// Instances are safe for concurrent use: each AnalyzeFile call creates its
// own tree-sitter parser.
type Analyzer struct {
	maxFileSize int64
	truncateLen int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize sets the byte-size ceiling for a single parse.
func WithMaxFileSize(n int64) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFileSize = n
		}
	}
}

// WithTruncateLen sets the length default-expression / constant text is
// truncated to.
func WithTruncateLen(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.truncateLen = n
		}
	}
}

// New builds an Analyzer with sensible defaults.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{maxFileSize: DefaultMaxFileSize, truncateLen: DefaultTruncateLen}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ImportRef is the raw, unresolved import emitted by a single file. It
// stays in dotted-source form: pkg/importgraph resolves relative imports
// to absolute ModulePaths and classifies internal/external/stdlib, since
// that classification needs the full set of discovered modules, which a
// single-file analyzer doesn't have.
type ImportRef struct {
	Line          int
	Level         int // 0 = absolute; N = N leading dots of a relative import
	ModulePath    string // dotted path with leading dots stripped (level captures them)
	Alias         string
	ImportedNames []string // names bound via "from X import a, b as c"
	IsWildcard    bool
}

// FileResult is everything AstAnalyzer extracts from one file.
type FileResult struct {
	ParseStatus    model.ParseStatus
	HasSyntaxError bool

	Classes   []model.ClassRecord
	Funcs     []model.FunctionRecord
	Constants []model.ConstantRecord
	Imports   []ImportRef
	CallSites []model.CallSite

	// FlowEvents is raw material for LogicMap rendering, keyed by the same
	// qualified name ("Class.method" or "function") used as
	// CallSite.ContainingFunc. pkg/hotspots applies side-effect
	// classification, truncation, and elision on top of this.
	FlowEvents map[string][]FlowEvent

	HasMainGuard bool // `if __name__ == "__main__":` at module level

	AnnotatedParams int
	TotalParams     int
	AnnotatedReturns int
	TotalFuncs      int
}

// AnalyzeFile parses content (the bytes of a single .py file) and
// extracts every record the rest of the pipeline needs. source is the
// file's own ModulePath, used to attribute CallSite.Source and to seed
// complexity/field extraction; it does not affect parsing.
func (a *Analyzer) AnalyzeFile(ctx context.Context, source model.ModulePath, content []byte) (*FileResult, error) {
	if int64(len(content)) > a.maxFileSize {
		return &FileResult{ParseStatus: model.ParseStatusUnreadable}, nil
	}
	if !utf8.Valid(content) {
		return &FileResult{ParseStatus: model.ParseStatusUnreadable}, fmt.Errorf("content is not valid UTF-8")
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return &FileResult{ParseStatus: model.ParseStatusSyntaxError}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return &FileResult{ParseStatus: model.ParseStatusSyntaxError}, nil
	}

	w := &walker{src: content, module: source, truncateLen: a.truncateLen}
	result := &FileResult{ParseStatus: model.ParseStatusParsed}
	if root.HasError() {
		result.HasSyntaxError = true
	}

	w.walkModuleBody(root, result)

	result.Classes = w.classes
	result.Funcs = w.funcs
	result.Constants = w.constants
	result.Imports = w.imports
	result.CallSites = w.callSites
	result.HasMainGuard = w.hasMainGuard
	result.AnnotatedParams = w.annotatedParams
	result.TotalParams = w.totalParams
	result.AnnotatedReturns = w.annotatedReturns
	result.TotalFuncs = w.totalFuncs
	result.FlowEvents = w.flowEvents

	return result, nil
}

// walker carries traversal state for a single file. It is not safe for
// concurrent use; one walker per AnalyzeFile call.
type walker struct {
	src         []byte
	module      model.ModulePath
	truncateLen int

	classes   []model.ClassRecord
	funcs     []model.FunctionRecord
	constants []model.ConstantRecord
	imports   []ImportRef
	callSites []model.CallSite
	flowEvents map[string][]FlowEvent

	hasMainGuard bool

	annotatedParams  int
	totalParams      int
	annotatedReturns int
	totalFuncs       int
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *walker) truncate(s string) string {
	if len(s) <= w.truncateLen {
		return s
	}
	return s[:w.truncateLen]
}

func line(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

// walkModuleBody collects imports with walkImportsRecursive, then
// processes the direct children of the file's root node: classes,
// functions, module-level constants, and the `if __name__ == "__main__":`
// guard, in one pass over the root's children rather than one pass per
// construct kind.
func (w *walker) walkModuleBody(root *sitter.Node, result *FileResult) {
	w.walkImportsRecursive(root, 0)

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "class_definition":
			if cls := w.processClass(child, nil); cls != nil {
				w.classes = append(w.classes, *cls)
			}
		case "decorated_definition":
			w.processDecoratedDefinition(child)
		case "function_definition":
			if fn := w.processFunction(child, nil, ""); fn != nil {
				w.funcs = append(w.funcs, *fn)
			}
		case "expression_statement":
			if c := w.processModuleConstant(child); c != nil {
				w.constants = append(w.constants, *c)
			}
		case "if_statement":
			if isMainGuard(child, w.src) {
				w.hasMainGuard = true
			}
		}
	}
}

// isMainGuard reports whether node is `if __name__ == "__main__":`.
func isMainGuard(node *sitter.Node, src []byte) bool {
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		return false
	}
	text := string(src[cond.StartByte():cond.EndByte()])
	text = strings.Join(strings.Fields(text), " ")
	return text == `__name__ == "__main__"` || text == `__name__ == '__main__'`
}

const maxRecurseDepth = 200

// walkImportsRecursive descends into every block (function bodies, if
// bodies, try bodies, ...) to catch inline imports.
func (w *walker) walkImportsRecursive(node *sitter.Node, depth int) {
	if node == nil || depth > maxRecurseDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_statement":
			w.processImportStatement(child)
		case "import_from_statement":
			w.processImportFromStatement(child)
		default:
			w.walkImportsRecursive(child, depth+1)
		}
	}
}

func (w *walker) processImportStatement(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			w.imports = append(w.imports, ImportRef{Line: line(node), ModulePath: w.text(child)})
		case "aliased_import":
			var path, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "dotted_name":
					path = w.text(gc)
				case "identifier":
					alias = w.text(gc)
				}
			}
			if path != "" {
				w.imports = append(w.imports, ImportRef{Line: line(node), ModulePath: path, Alias: alias})
			}
		}
	}
}

func (w *walker) processImportFromStatement(node *sitter.Node) {
	var modulePath string
	var names []string
	var isWildcard bool
	var level int
	var sawImport bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			var prefix, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "import_prefix":
					prefix = w.text(gc)
				case "dotted_name":
					name = w.text(gc)
				}
			}
			level = len(prefix)
			modulePath = name
		case "dotted_name":
			name := w.text(child)
			if !sawImport {
				modulePath = name
			} else {
				names = append(names, name)
			}
		case "wildcard_import":
			isWildcard = true
		case "aliased_import":
			var importName, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					if importName == "" {
						importName = w.text(gc)
					} else {
						alias = w.text(gc)
					}
				case "dotted_name":
					if importName == "" {
						importName = w.text(gc)
					}
				}
			}
			if alias != "" {
				names = append(names, importName+" as "+alias)
			} else if importName != "" {
				names = append(names, importName)
			}
		case "identifier":
			if sawImport {
				names = append(names, w.text(child))
			}
		}
	}

	if modulePath != "" || level > 0 {
		w.imports = append(w.imports, ImportRef{
			Line:          line(node),
			Level:         level,
			ModulePath:    modulePath,
			ImportedNames: names,
			IsWildcard:    isWildcard,
		})
	}
}

// isConstantName reports whether name is all-uppercase with at least one
// letter, the skeleton's definition of a module-level constant (§4.2).
func isConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func (w *walker) processModuleConstant(stmt *sitter.Node) *model.ConstantRecord {
	if stmt.ChildCount() == 0 {
		return nil
	}
	assign := stmt.Child(0)
	if assign.Type() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		return nil
	}
	name := w.text(left)
	if !isConstantName(name) {
		return nil
	}
	return &model.ConstantRecord{Name: name, Line: line(stmt), Value: w.truncate(w.text(right))}
}
