// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/pyxray/pkg/model"
)

// processClass extracts one class_definition into a ClassRecord: walk
// its identifier/argument_list/block children to pick up the name, base
// classes, and body, then recurse into the body for members. decorators
// is the set collected by the enclosing decorated_definition, if any.
func (w *walker) processClass(node *sitter.Node, decorators []string) *model.ClassRecord {
	var name string
	var bases []string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = w.text(child)
			}
		case "argument_list":
			bases = append(bases, w.extractBaseClasses(child)...)
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	cls := &model.ClassRecord{
		Name:         name,
		Line:         line(node),
		Bases:        bases,
		Decorators:   decorators,
		DocFirstLine: firstDocLine(bodyNode, w.src),
		Kind:         classifyModelKind(bases, decorators),
	}

	if bodyNode != nil {
		w.extractClassMembers(bodyNode, cls)
	}
	return cls
}

func (w *walker) extractBaseClasses(argList *sitter.Node) []string {
	var bases []string
	for j := 0; j < int(argList.ChildCount()); j++ {
		arg := argList.Child(j)
		switch arg.Type() {
		case "identifier":
			bases = append(bases, w.text(arg))
		case "attribute":
			full := w.text(arg)
			if idx := strings.LastIndex(full, "."); idx >= 0 {
				bases = append(bases, full[idx+1:])
			} else {
				bases = append(bases, full)
			}
		case "subscript":
			if base := arg.ChildByFieldName("value"); base != nil {
				bases = append(bases, w.text(base))
			}
		case "keyword_argument":
			// metaclass=... and similar: not a base class, skip.
		}
	}
	return bases
}

// classifyModelKind detects the data-modelling library a class
// participates in from its bases and decorators (§3 ClassRecord.Kind).
func classifyModelKind(bases, decorators []string) model.ModelKind {
	for _, b := range bases {
		switch b {
		case "BaseModel", "BaseSettings":
			return model.ModelKindPydantic
		case "TypedDict":
			return model.ModelKindTypedDict
		case "NamedTuple":
			return model.ModelKindNamedTuple
		}
	}
	for _, d := range decorators {
		if d == "dataclass" {
			return model.ModelKindDataclass
		}
	}
	return model.ModelKindPlain
}

// extractClassMembers walks a class body for methods, decorated methods,
// and class-level annotated assignments (FieldRecord source=class_body).
func (w *walker) extractClassMembers(body *sitter.Node, cls *model.ClassRecord) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			if m := w.processMethod(child, nil, cls); m != nil {
				cls.Methods = append(cls.Methods, *m)
			}
		case "decorated_definition":
			w.processDecoratedMethod(child, cls)
		case "expression_statement":
			if child.ChildCount() == 0 {
				continue
			}
			stmt := child.Child(0)
			if stmt.Type() == "assignment" {
				if f := w.processClassFieldAssignment(stmt); f != nil {
					cls.Fields = append(cls.Fields, *f)
				}
			}
		}
	}
}

// processClassFieldAssignment extracts a class-level annotated assignment
// as a FieldRecord (§4.2 class-body fields; only annotated assignments
// count, matching ClassRecord's "class-level annotated assignments").
func (w *walker) processClassFieldAssignment(assign *sitter.Node) *model.FieldRecord {
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	typeNode := assign.ChildByFieldName("type")
	if left == nil || left.Type() != "identifier" || typeNode == nil {
		return nil
	}
	field := &model.FieldRecord{
		Name:       w.text(left),
		Annotation: w.text(typeNode),
		Default:    w.truncate(w.text(right)),
		Source:     model.FieldSourceClassBody,
	}
	if right != nil && right.Type() == "call" {
		if callee := right.ChildByFieldName("function"); callee != nil && strings.HasSuffix(w.text(callee), "Field") {
			field.Constraints = w.extractFieldConstraints(right)
		}
	}
	return field
}

// extractFieldConstraints reads pydantic.Field(...) keyword arguments
// (e.g. gt=0, max_length=255) into PydanticFieldConstraint pairs.
func (w *walker) extractFieldConstraints(call *sitter.Node) []model.PydanticFieldConstraint {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	var out []model.PydanticFieldConstraint
	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg.Type() != "keyword_argument" {
			continue
		}
		name := arg.ChildByFieldName("name")
		value := arg.ChildByFieldName("value")
		if name == nil {
			continue
		}
		out = append(out, model.PydanticFieldConstraint{Key: w.text(name), Value: w.text(value)})
	}
	return out
}

func firstDocLine(body *sitter.Node, src []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Type() != "string" {
		return ""
	}
	text := string(src[str.StartByte():str.EndByte()])
	text = strings.Trim(text, "\"'")
	text = strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	return text
}
