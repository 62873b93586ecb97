package formatter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"classfmt/extractor"
)

// Language is a source grammar the collector can parse.
type Language string

const (
	LangTSX Language = "tsx"
	LangJSX Language = "jsx"
)

// DefaultAttributeNames are the attributes holding class lists.
var DefaultAttributeNames = []string{"className", "class"}

// ValueKind tells how an attribute value is written.
type ValueKind int

const (
	ValueString     ValueKind = iota // className="..."
	ValueExpression                  // className={...}
)

// ClassAttribute is one class-bearing attribute found in source code.
type ClassAttribute struct {
	Name  string
	Kind  ValueKind
	Value extractor.Expr // Nil for an empty expression container.

	// ValueSpan covers the attribute value, quotes or braces included.
	ValueSpan extractor.Span

	// Indentation of the line the attribute starts on.
	LineIndent string
}

// LanguageForPath picks the grammar for a file name.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return LangTSX, true
	case ".jsx", ".js", ".mjs", ".cjs":
		return LangJSX, true
	default:
		return "", false
	}
}

func (l Language) grammar() *sitter.Language {
	if l == LangJSX {
		return javascript.GetLanguage()
	}
	return tsx.GetLanguage()
}

// CollectClassAttributes parses code and returns every JSX attribute whose
// name is in names, in source order.
func CollectClassAttributes(ctx context.Context, lang Language, code []byte, names []string) ([]ClassAttribute, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, errors.Wrap(err, "parsing source")
	}
	defer tree.Close()

	if len(names) == 0 {
		names = DefaultAttributeNames
	}

	var attributes []ClassAttribute
	walkAttributes(tree.RootNode(), code, names, &attributes)

	return attributes, nil
}

// walkAttributes visits the tree depth-first, collecting class attributes.
func walkAttributes(node *sitter.Node, code []byte, names []string, out *[]ClassAttribute) {
	if node == nil {
		return
	}

	if node.Type() == "jsx_attribute" {
		if attribute, ok := classAttribute(node, code, names); ok {
			*out = append(*out, attribute)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkAttributes(node.NamedChild(i), code, names, out)
	}
}

func classAttribute(node *sitter.Node, code []byte, names []string) (ClassAttribute, bool) {
	if node.NamedChildCount() < 2 {
		return ClassAttribute{}, false
	}

	name := node.NamedChild(0).Content(code)
	if !containsString(names, name) {
		return ClassAttribute{}, false
	}

	value := node.NamedChild(1)
	attribute := ClassAttribute{
		Name:       name,
		ValueSpan:  spanOf(value),
		LineIndent: lineIndentAt(code, int(node.StartByte())),
	}

	switch value.Type() {
	case "string":
		attribute.Kind = ValueString
		attribute.Value = convertNode(value, code)
	case "jsx_expression":
		attribute.Kind = ValueExpression
		if inner := firstExpression(value); inner != nil {
			attribute.Value = convertNode(inner, code)
		}
	default:
		return ClassAttribute{}, false
	}

	return attribute, true
}

// convertNode maps a tree-sitter expression onto the extractor's node shapes.
func convertNode(node *sitter.Node, code []byte) extractor.Expr {
	span := spanOf(node)

	switch node.Type() {
	case "string":
		return &extractor.StringLit{Span: span, Value: stringValue(node, code)}

	case "template_string":
		return convertTemplate(node, code)

	case "ternary_expression":
		consequence := node.ChildByFieldName("consequence")
		alternative := node.ChildByFieldName("alternative")
		if consequence == nil || alternative == nil {
			return &extractor.Other{Span: span}
		}
		return &extractor.Conditional{
			Span:       span,
			Consequent: convertNode(consequence, code),
			Alternate:  convertNode(alternative, code),
		}

	case "call_expression":
		callee := node.ChildByFieldName("function")
		arguments := node.ChildByFieldName("arguments")
		if callee == nil || arguments == nil || callee.Type() != "identifier" {
			return &extractor.Other{Span: span}
		}

		call := &extractor.Call{Span: span, Callee: callee.Content(code)}
		for i := 0; i < int(arguments.NamedChildCount()); i++ {
			arg := arguments.NamedChild(i)
			if arg.Type() == "comment" {
				continue
			}
			call.Args = append(call.Args, convertNode(arg, code))
		}
		return call

	case "parenthesized_expression":
		if inner := firstExpression(node); inner != nil {
			return convertNode(inner, code)
		}
	}

	return &extractor.Other{Span: span}
}

// convertTemplate splits a template literal into literal segments and
// substitutions using byte offsets, independent of how the grammar labels
// the literal text.
func convertTemplate(node *sitter.Node, code []byte) *extractor.Template {
	template := &extractor.Template{Span: spanOf(node)}

	cursor := int(node.StartByte()) + 1
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "template_substitution" {
			continue
		}

		template.Quasis = append(template.Quasis, string(code[cursor:child.StartByte()]))

		var expr extractor.Expr = &extractor.Other{Span: extractor.Span{
			Start: int(child.StartByte()) + 2,
			End:   int(child.EndByte()) - 1,
		}}
		if inner := firstExpression(child); inner != nil {
			expr = convertNode(inner, code)
		}
		template.Exprs = append(template.Exprs, expr)

		cursor = int(child.EndByte())
	}

	end := int(node.EndByte()) - 1
	if end < cursor {
		end = cursor
	}
	template.Quasis = append(template.Quasis, string(code[cursor:end]))

	return template
}

// firstExpression returns the first named child that is not a comment.
func firstExpression(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// stringValue returns the raw text between the quotes of a string node.
func stringValue(node *sitter.Node, code []byte) string {
	content := node.Content(code)
	if len(content) < 2 {
		return ""
	}
	return content[1 : len(content)-1]
}

func spanOf(node *sitter.Node) extractor.Span {
	return extractor.Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}

// lineIndentAt returns the leading whitespace of the line containing offset.
func lineIndentAt(code []byte, offset int) string {
	start := offset
	for start > 0 && code[start-1] != '\n' {
		start--
	}

	end := start
	for end < len(code) && (code[end] == ' ' || code[end] == '\t') {
		end++
	}

	return string(code[start:end])
}
