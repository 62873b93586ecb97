package formatter

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"classfmt/entities"
	"classfmt/extractor"
)

// RewriteOptions control RewriteFile.
type RewriteOptions struct {
	// AttributeNames lists the attributes holding classes. Defaults to
	// DefaultAttributeNames.
	AttributeNames []string

	// Sort is applied to string values. Its Formatter, Indent and
	// ClosingIndent are set per attribute.
	Sort SortOptions

	Formatter entities.FormatterConfig
}

// edit replaces code[start:end] with text.
type edit struct {
	start int
	end   int
	text  string
}

// RewriteFile sorts and formats the class attributes of a source file. It
// returns code unchanged when nothing needs rewriting.
//
// Only shapes whose rewritten form keeps the program's meaning are touched:
// string values, template literals and string arguments of class helper calls.
func RewriteFile(ctx context.Context, lang Language, code []byte, opts RewriteOptions) ([]byte, error) {
	attributes, err := CollectClassAttributes(ctx, lang, code, opts.AttributeNames)
	if err != nil {
		return nil, errors.Wrap(err, "collecting class attributes")
	}

	cfg := normalizeConfig(opts.Formatter)
	table := BuildPrefixTable(cfg.Categories)
	unit := IndentUnit(cfg.UsesTabs, cfg.TabWidth)
	source := string(code)

	var edits []edit
	for _, attribute := range attributes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sortOpts := opts.Sort
		sortOpts.Formatter = cfg
		sortOpts.Indent = attribute.LineIndent + unit
		sortOpts.ClosingIndent = attribute.LineIndent

		switch value := attribute.Value.(type) {
		case *extractor.StringLit:
			edits = appendStringEdit(edits, value, sortOpts)

		case *extractor.Template:
			if e, ok := templateEdit(value, source, table, sortOpts); ok {
				edits = append(edits, e)
			}

		case *extractor.Call:
			// Quoted arguments cannot hold raw newlines, so they stay on one line.
			plain := sortOpts
			plain.UseCategories = false
			for _, arg := range value.Args {
				if s, ok := arg.(*extractor.StringLit); ok {
					edits = appendStringEdit(edits, s, plain)
				}
			}
		}
	}

	if len(edits) == 0 {
		return code, nil
	}

	return applyEdits(code, edits), nil
}

// appendStringEdit sorts the text between the quotes of s.
func appendStringEdit(edits []edit, s *extractor.StringLit, opts SortOptions) []edit {
	if s.End-s.Start < 2 {
		return edits
	}

	sorted := SortClasses(s.Value, opts)
	if sorted == s.Value {
		return edits
	}

	return append(edits, edit{start: s.Start + 1, end: s.End - 1, text: sorted})
}

// templateEdit renders a template literal as categorized lines. Short
// single-line templates are left alone.
func templateEdit(t *extractor.Template, source string, table *PrefixTable, opts SortOptions) (edit, bool) {
	if !opts.UseCategories {
		return edit{}, false
	}

	parsed := extractor.Extract(t, source, table, opts.Formatter.Viewports)

	static := len(parsed.BaseClasses)
	for _, tokens := range parsed.ViewportClasses {
		static += len(tokens)
	}
	if static == 0 {
		return edit{}, false
	}

	raw := extractor.Text(t, source)
	if !strings.Contains(raw, "\n") && static+len(parsed.DynamicExpressions) < expandThreshold {
		return edit{}, false
	}

	if !opts.PreserveDuplicates {
		parsed.BaseClasses = dedupTokens(parsed.BaseClasses, opts.Ranker)
	}

	cfg := opts.Formatter
	cfg.Indent = opts.Indent

	lines := Layout(parsed, cfg, opts.Ranker)

	var b strings.Builder
	b.WriteString("`\n")
	for _, line := range lines {
		b.WriteString(opts.Indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(opts.ClosingIndent)
	b.WriteString("`")

	if b.String() == raw {
		return edit{}, false
	}

	return edit{start: t.Start, end: t.End, text: b.String()}, true
}

// applyEdits applies edits back to front so earlier offsets stay valid.
// Overlapping edits after the first are dropped.
func applyEdits(code []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})

	out := append([]byte(nil), code...)
	limit := len(code)
	for _, e := range edits {
		if e.end > limit || e.start < 0 || e.start > e.end {
			continue
		}
		out = append(out[:e.start], append([]byte(e.text), out[e.end:]...)...)
		limit = e.start
	}

	return out
}

// generatedMarkers identify files written by code generators.
var generatedMarkers = [][]byte{
	[]byte("@generated"),
	[]byte("Code generated"),
	[]byte("DO NOT EDIT"),
	[]byte("auto-generated"),
}

// IsGeneratedFile checks the leading comment lines of a file for a
// generator marker.
func IsGeneratedFile(code []byte) bool {
	for _, line := range bytes.SplitN(code, []byte("\n"), 10) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if !bytes.HasPrefix(trimmed, []byte("//")) && !bytes.HasPrefix(trimmed, []byte("/*")) && !bytes.HasPrefix(trimmed, []byte("*")) {
			return false
		}
		for _, marker := range generatedMarkers {
			if bytes.Contains(trimmed, marker) {
				return true
			}
		}
	}
	return false
}
