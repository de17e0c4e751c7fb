// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/pyxray/pkg/model"
)

// pydanticValidatorDecorators is the fixed set recognised as validator
// hooks on a Pydantic-kind class (§4.2).
var pydanticValidatorDecorators = map[string]bool{
	"validator": true, "field_validator": true, "root_validator": true, "model_validator": true,
}

// processDecoratedDefinition handles a module-level decorated class or
// function definition, recovering the underlying definition and
// attaching the decorator list gathered above it.
func (w *walker) processDecoratedDefinition(node *sitter.Node) {
	decorators := w.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "class_definition":
			if cls := w.processClass(child, decorators); cls != nil {
				w.classes = append(w.classes, *cls)
			}
		case "function_definition":
			if fn := w.processFunction(child, decorators, ""); fn != nil {
				w.funcs = append(w.funcs, *fn)
			}
		}
	}
}

// processDecoratedMethod handles a decorated method inside a class body.
func (w *walker) processDecoratedMethod(node *sitter.Node, cls *model.ClassRecord) {
	decorators := w.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "function_definition" {
			if m := w.processMethod(child, decorators, cls); m != nil {
				cls.Methods = append(cls.Methods, *m)
			}
			return
		}
	}
}

// extractDecorators extracts decorator names in bare-name form: if the
// decorator is a call, the called name is kept (§4.2).
func (w *walker) extractDecorators(node *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, w.text(gc))
			case "call":
				if fn := gc.ChildByFieldName("function"); fn != nil {
					decorators = append(decorators, w.text(fn))
				}
			}
		}
	}
	return decorators
}

// processMethod extracts one method, shared by plain and decorated paths.
// When cls is non-nil and the method is __init__, instance-variable
// extraction runs over its body and contributes FieldRecords to cls.
func (w *walker) processMethod(node *sitter.Node, decorators []string, cls *model.ClassRecord) *model.MethodRecord {
	name, params, returnAnnot, isAsync, body := w.functionSignatureParts(node)
	if name == "" {
		return nil
	}

	m := &model.MethodRecord{
		Name:         name,
		Line:         line(node),
		Params:       params,
		ReturnAnnot:  returnAnnot,
		IsAsync:      isAsync,
		Decorators:   decorators,
		DocFirstLine: firstDocLine(body, w.src),
		Complexity:   complexityOf(body),
	}

	w.countAnnotationCoverage(params, returnAnnot)

	containing := name
	if cls != nil {
		containing = cls.Name + "." + name
	}
	if body != nil {
		w.walkCallSites(body, containing)
		w.walkFlowEvents(body, containing, 0)
	}

	if cls != nil && name == "__init__" && body != nil {
		cls.Fields = append(cls.Fields, w.extractInitFields(body)...)
	}
	if cls != nil && pydanticValidatorDecorators[firstMatchingValidator(decorators)] {
		// Validator methods are retained as ordinary methods; their
		// presence is what marks the class as validated, nothing further
		// to extract beyond the decorator name already on the record.
		_ = cls
	}

	return m
}

func firstMatchingValidator(decorators []string) string {
	for _, d := range decorators {
		if pydanticValidatorDecorators[d] {
			return d
		}
	}
	return ""
}

// processFunction extracts a module-level or nested function.
func (w *walker) processFunction(node *sitter.Node, decorators []string, containingPrefix string) *model.FunctionRecord {
	name, params, returnAnnot, isAsync, body := w.functionSignatureParts(node)
	if name == "" {
		return nil
	}

	fn := &model.FunctionRecord{
		Name:         name,
		Line:         line(node),
		Params:       params,
		ReturnAnnot:  returnAnnot,
		IsAsync:      isAsync,
		Decorators:   decorators,
		DocFirstLine: firstDocLine(body, w.src),
		Complexity:   complexityOf(body),
		IsNested:     containingPrefix != "",
	}

	w.countAnnotationCoverage(params, returnAnnot)

	containing := name
	if containingPrefix != "" {
		containing = containingPrefix + "." + name
	}
	if body != nil {
		w.walkCallSites(body, containing)
		w.walkFlowEvents(body, containing, 0)
		w.walkNestedFunctions(body, containing)
	}

	return fn
}

// walkNestedFunctions descends one level at a time looking for nested
// function_definition/decorated_definition statements. Nested functions
// are reported as FunctionRecords with IsNested=true rather than
// attached as children, since the record set has no function-nesting
// field.
func (w *walker) walkNestedFunctions(body *sitter.Node, containingPrefix string) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			if fn := w.processFunction(child, nil, containingPrefix); fn != nil {
				w.funcs = append(w.funcs, *fn)
			}
		case "decorated_definition":
			decorators := w.extractDecorators(child)
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "function_definition" {
					if fn := w.processFunction(gc, decorators, containingPrefix); fn != nil {
						w.funcs = append(w.funcs, *fn)
					}
				}
			}
		}
	}
}

// functionSignatureParts extracts the shared fields of a
// function_definition node: name, parameters, return annotation, async
// flag, and the body block.
func (w *walker) functionSignatureParts(node *sitter.Node) (name string, params []model.Param, returnAnnot string, isAsync bool, body *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			if name == "" {
				name = w.text(child)
			}
		case "parameters":
			params = w.extractParams(child)
		case "type":
			returnAnnot = w.text(child)
		case "block":
			body = child
		}
	}
	return
}

// extractParams walks a `parameters` node into Param records, handling
// plain, typed, defaulted, and typed-defaulted parameters plus *args/**kwargs.
func (w *walker) extractParams(node *sitter.Node) []model.Param {
	var params []model.Param
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, model.Param{Name: w.text(child)})
		case "typed_parameter":
			p := model.Param{}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					p.Name = w.text(gc)
				case "type":
					p.Annotation = w.text(gc)
				}
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "default_parameter":
			p := model.Param{}
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = w.text(n)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.Default = w.truncate(w.text(v))
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "typed_default_parameter":
			p := model.Param{}
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = w.text(n)
			}
			if t := child.ChildByFieldName("type"); t != nil {
				p.Annotation = w.text(t)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.Default = w.truncate(w.text(v))
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, model.Param{Name: strings.TrimLeft(w.text(child), "*")})
		}
	}
	return params
}

// countAnnotationCoverage feeds the type-annotation-coverage formula
// (§4.2): (annotated params + annotated returns) / (total params +
// function count), excluding self/cls.
func (w *walker) countAnnotationCoverage(params []model.Param, returnAnnot string) {
	w.totalFuncs++
	if returnAnnot != "" {
		w.annotatedReturns++
	}
	for _, p := range params {
		if p.Name == "self" || p.Name == "cls" {
			continue
		}
		w.totalParams++
		if p.Annotation != "" {
			w.annotatedParams++
		}
	}
}

// extractInitFields lifts `self.<name> = ...` assignments out of
// __init__'s body, in first-assigned order, as FieldRecords with
// source=init_assignment (§4.2).
func (w *walker) extractInitFields(body *sitter.Node) []model.FieldRecord {
	var fields []model.FieldRecord
	seen := map[string]bool{}
	w.walkInitAssignments(body, &fields, seen, 0)
	return fields
}

func (w *walker) walkInitAssignments(node *sitter.Node, fields *[]model.FieldRecord, seen map[string]bool, depth int) {
	if node == nil || depth > maxRecurseDepth {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			stmt := child.Child(0)
			if stmt.Type() == "assignment" {
				if f := w.selfFieldFromAssignment(stmt); f != nil && !seen[f.Name] {
					seen[f.Name] = true
					*fields = append(*fields, *f)
				}
			}
		}
		// Stop descending into nested function/class definitions; their
		// own self-assignments belong to a different scope.
		if child.Type() == "function_definition" || child.Type() == "class_definition" {
			continue
		}
		w.walkInitAssignments(child, fields, seen, depth+1)
	}
}

func (w *walker) selfFieldFromAssignment(assign *sitter.Node) *model.FieldRecord {
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "attribute" {
		return nil
	}
	obj := left.ChildByFieldName("object")
	attr := left.ChildByFieldName("attribute")
	if obj == nil || attr == nil || w.text(obj) != "self" {
		return nil
	}
	return &model.FieldRecord{
		Name:    w.text(attr),
		Default: w.truncate(w.text(right)),
		Source:  model.FieldSourceInitAssignment,
	}
}
