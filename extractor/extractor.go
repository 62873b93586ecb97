// Package extractor separates the static class tokens of a class attribute
// from the runtime expressions mixed into it.
//
// Recognized shapes:
//  1. Plain strings.
//  2. Conditionals (both string branches are filed statically).
//  3. Calls of a plain function name, e.g. clsx('a', cond ? 'b' : 'c').
//  4. Template literals, including interpolations inside a token.
//
// Anything else is recorded as a dynamic placeholder, unless its source text
// already looks like a class with a configured prefix.
package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"classfmt/entities"
)

const interpolationMarker = "${"

// PrefixMatcher reports whether a string starts with a configured class prefix.
type PrefixMatcher interface {
	HasPrefix(s string) bool
}

// extraction carries the state of one Extract call.
type extraction struct {
	source    string
	matcher   PrefixMatcher
	viewports []string
	result    entities.ClassParseResult
}

// Extract walks expr and returns its static tokens and dynamic placeholders.
// source is the text the expression spans point into.
func Extract(expr Expr, source string, matcher PrefixMatcher, viewports []string) entities.ClassParseResult {
	x := &extraction{
		source:    source,
		matcher:   matcher,
		viewports: viewports,
		result: entities.ClassParseResult{
			ViewportClasses: make(map[string][]string, len(viewports)),
		},
	}
	for _, viewport := range viewports {
		x.result.ViewportClasses[viewport] = []string{}
	}

	if expr != nil {
		x.expression(expr)
	}

	return x.result
}

// ExtractString tokenizes a plain class string.
func ExtractString(value string, viewports []string) entities.ClassParseResult {
	return Extract(&StringLit{Value: value}, "", nil, viewports)
}

func (x *extraction) expression(expr Expr) {
	switch e := expr.(type) {
	case *StringLit:
		x.file(e.Value)

	case *Conditional:
		x.conditional(e)
		x.dynamic(wrapPlaceholder(Text(e, x.source)))

	case *Call:
		for _, arg := range e.Args {
			switch a := arg.(type) {
			case *StringLit:
				x.file(a.Value)
			case *Conditional:
				x.conditional(a)
				x.dynamic(Text(a, x.source))
			default:
				x.dynamic(Text(a, x.source))
			}
		}

	case *Template:
		x.template(e)

	case *Other:
		text := Text(e, x.source)
		if x.hasPrefix(text) {
			x.file(text)
		} else {
			x.dynamic(text)
		}
	}
}

// conditional files the string branches of e. Both outcomes are surfaced
// since the branch taken is only known at runtime.
func (x *extraction) conditional(e *Conditional) {
	if s, ok := e.Consequent.(*StringLit); ok {
		x.file(s.Value)
	}
	if s, ok := e.Alternate.(*StringLit); ok {
		x.file(s.Value)
	}
}

func (x *extraction) template(t *Template) {
	buffer := ""

	for i, quasi := range t.Quasis {
		buffer += quasi

		if i < len(t.Exprs) {
			text := Text(t.Exprs[i], x.source)
			next := ""
			if i+1 < len(t.Quasis) {
				next = t.Quasis[i+1]
			}

			if insideToken(buffer, next) {
				// Part of a token such as bg-${color}-500; resolved on flush.
				buffer += interpolationMarker + text + "}"
			} else {
				x.flushTemplate(buffer)
				x.dynamic(interpolationMarker + text + "}")
				buffer = ""
			}
		}

		if endsWithSpace(buffer) || i == len(t.Quasis)-1 {
			x.flushTemplate(buffer)
			buffer = ""
		}
	}
}

// flushTemplate files the tokens of a template buffer. Tokens carrying an
// interpolation are kept as opaque static tokens when the text before the
// interpolation has a configured prefix, otherwise they become placeholders.
func (x *extraction) flushTemplate(buffer string) {
	for _, token := range strings.Fields(buffer) {
		idx := strings.Index(token, interpolationMarker)
		if idx < 0 {
			x.fileToken(token)
			continue
		}

		before := stripViewport(token[:idx], x.viewports)
		if before != "" && x.hasPrefix(before) {
			x.fileToken(token)
		} else {
			x.dynamic(token)
		}
	}
}

// file tokenizes s on whitespace and files every token.
func (x *extraction) file(s string) {
	for _, token := range strings.Fields(s) {
		x.fileToken(token)
	}
}

// fileToken files a token under the first configured viewport whose prefix it
// carries, or under the base classes.
func (x *extraction) fileToken(token string) {
	for _, viewport := range x.viewports {
		if rest, ok := strings.CutPrefix(token, viewport+":"); ok {
			x.result.ViewportClasses[viewport] = append(x.result.ViewportClasses[viewport], rest)
			return
		}
	}
	x.result.BaseClasses = append(x.result.BaseClasses, token)
}

func (x *extraction) dynamic(text string) {
	if text == "" {
		return
	}
	x.result.DynamicExpressions = append(x.result.DynamicExpressions, text)
}

func (x *extraction) hasPrefix(s string) bool {
	return x.matcher != nil && s != "" && x.matcher.HasPrefix(s)
}

// wrapPlaceholder wraps text as ${text} unless it already is.
func wrapPlaceholder(text string) string {
	if text == "" || strings.HasPrefix(text, interpolationMarker) {
		return text
	}
	return interpolationMarker + text + "}"
}

// insideToken reports whether an interpolation between before and after is
// glued to a token on either side.
func insideToken(before, after string) bool {
	if before != "" && !endsWithSpace(before) {
		return true
	}
	if after != "" {
		r, _ := utf8.DecodeRuneInString(after)
		return !unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func stripViewport(token string, viewports []string) string {
	for _, viewport := range viewports {
		if rest, ok := strings.CutPrefix(token, viewport+":"); ok {
			return rest
		}
	}
	return token
}
