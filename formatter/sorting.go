package formatter

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/Oudwins/tailwind-merge-go/pkg/twmerge"

	"classfmt/entities"
	"classfmt/extractor"
)

// expandThreshold is the number of classes from which a single-line class
// string is expanded into categorized lines.
const expandThreshold = 5

// SortOptions control SortClasses.
type SortOptions struct {
	// Ranker orders tokens. Without one every token is unknown and the
	// input order is kept.
	Ranker Ranker

	IgnoreFirst        bool // Keep the first token in place.
	IgnoreLast         bool // Keep the last token in place.
	PreserveDuplicates bool // Disable duplicate removal.
	PreserveWhitespace bool // Keep whitespace runs as written.

	// Leading and trailing whitespace is dropped when collapsing, unless
	// these keep a single space instead.
	KeepLeadingSpace  bool
	KeepTrailingSpace bool

	// MergeConflicts resolves conflicting utilities (p-2 p-4) before sorting.
	MergeConflicts bool

	// UseCategories expands multi-line strings and strings with at least
	// five classes into categorized lines.
	UseCategories bool
	Formatter     entities.FormatterConfig

	// Indent prefixes every categorized line; ClosingIndent follows the last
	// one. When Indent is empty both are derived from the string itself or
	// from Formatter.
	Indent        string
	ClosingIndent string
}

// SortClasses orders the classes of a class attribute value.
func SortClasses(classStr string, opts SortOptions) string {
	if classStr == "" || strings.Contains(classStr, "{{") {
		return classStr
	}

	hasNewline := strings.Contains(classStr, "\n")

	if opts.MergeConflicts && strings.TrimSpace(classStr) != "" {
		classStr = mergeConflicts(classStr)
	}

	if opts.UseCategories {
		if formatted, ok := categorizeClassString(classStr, hasNewline, opts); ok {
			return formatted
		}
	}

	return sortPlain(classStr, opts)
}

// SortClassList orders tokens by rank and optionally removes duplicates.
// The returned set holds indices into the ordered list of removed tokens.
func SortClassList(tokens []string, ranker Ranker, removeDuplicates bool) ([]string, map[int]struct{}) {
	ranked := rankTokens(tokens, ranker)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankLess(ranked[i], ranked[j])
	})

	removed := make(map[int]struct{})
	sorted := make([]string, 0, len(ranked))
	seen := make(map[string]struct{})

	for i, item := range ranked {
		if removeDuplicates {
			if _, ok := seen[item.Token]; ok {
				removed[i] = struct{}{}
				continue
			}
			// Tokens the ranker does not know are never deduplicated.
			if item.Rank != nil {
				seen[item.Token] = struct{}{}
			}
		}
		sorted = append(sorted, item.Token)
	}

	return sorted, removed
}

// rankTokens pairs every token with its rank, in input order.
func rankTokens(tokens []string, ranker Ranker) []entities.RankedToken {
	ranks := make(map[string]*int64, len(tokens))
	if ranker != nil && len(tokens) > 0 {
		for _, ranked := range ranker.Rank(tokens) {
			if ranks[ranked.Token] == nil {
				ranks[ranked.Token] = ranked.Rank
			}
		}
	}

	result := make([]entities.RankedToken, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, entities.RankedToken{Token: token, Rank: ranks[token]})
	}
	return result
}

// rankLess orders the ellipsis last, unknown tokens first and the rest by rank.
func rankLess(a, b entities.RankedToken) bool {
	if isEllipsis(a.Token) {
		return false
	}
	if isEllipsis(b.Token) {
		return true
	}

	switch {
	case a.Rank == nil && b.Rank == nil:
		return false
	case a.Rank == nil:
		return true
	case b.Rank == nil:
		return false
	default:
		return *a.Rank < *b.Rank
	}
}

func isEllipsis(token string) bool {
	return token == "..." || token == "…"
}

// sortPlain sorts a class string on one line, keeping or collapsing the
// whitespace between tokens.
func sortPlain(classStr string, opts SortOptions) string {
	collapse := !opts.PreserveWhitespace

	if strings.TrimSpace(classStr) == "" {
		if collapse {
			return " "
		}
		return classStr
	}

	leading, tokens, separators, trailing := splitClassString(classStr)

	if collapse {
		leading = collapseEdge(leading, opts.KeepLeadingSpace)
		trailing = collapseEdge(trailing, opts.KeepTrailingSpace)
		for i := range separators {
			separators[i] = " "
		}
	}

	prefix := ""
	if opts.IgnoreFirst && len(tokens) > 0 {
		prefix = leading + tokens[0]
		leading = ""
		tokens = tokens[1:]
		if len(separators) > 0 {
			prefix += separators[0]
			separators = separators[1:]
		} else {
			prefix += trailing
			trailing = ""
		}
	}

	suffix := ""
	if opts.IgnoreLast && len(tokens) > 0 {
		suffix = tokens[len(tokens)-1] + trailing
		trailing = ""
		tokens = tokens[:len(tokens)-1]
		if len(separators) > 0 {
			suffix = separators[len(separators)-1] + suffix
			separators = separators[:len(separators)-1]
		}
	}

	sorted, removed := SortClassList(tokens, opts.Ranker, !opts.PreserveDuplicates)

	// Drop the whitespace run in front of every removed token.
	kept := make([]string, 0, len(separators))
	for i, separator := range separators {
		if _, ok := removed[i+1]; ok {
			continue
		}
		kept = append(kept, separator)
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(leading)
	for i, token := range sorted {
		b.WriteString(token)
		if i < len(sorted)-1 && i < len(kept) {
			b.WriteString(kept[i])
		}
	}
	b.WriteString(trailing)
	b.WriteString(suffix)

	return b.String()
}

// collapseEdge turns a leading or trailing whitespace run into "" or " ".
func collapseEdge(ws string, keepSpace bool) string {
	if ws == "" || !keepSpace {
		return ""
	}
	return " "
}

// splitClassString splits s into its leading whitespace, tokens, the
// whitespace runs between tokens and the trailing whitespace.
func splitClassString(s string) (leading string, tokens, separators []string, trailing string) {
	trimmedStart := strings.TrimLeftFunc(s, unicode.IsSpace)
	leading = s[:len(s)-len(trimmedStart)]
	body := strings.TrimRightFunc(trimmedStart, unicode.IsSpace)
	trailing = trimmedStart[len(body):]

	for body != "" {
		end := strings.IndexFunc(body, unicode.IsSpace)
		if end < 0 {
			tokens = append(tokens, body)
			break
		}
		tokens = append(tokens, body[:end])
		rest := strings.TrimLeftFunc(body[end:], unicode.IsSpace)
		separators = append(separators, body[end:len(body)-len(rest)])
		body = rest
	}

	return leading, tokens, separators, trailing
}

// categorizeClassString renders classStr as indented category lines. It
// reports false when the string should stay on one line.
func categorizeClassString(classStr string, hasNewline bool, opts SortOptions) (string, bool) {
	classes := strings.Fields(classStr)
	if len(classes) == 0 || (!hasNewline && len(classes) < expandThreshold) {
		return "", false
	}

	if !opts.PreserveDuplicates {
		classes = dedupTokens(classes, opts.Ranker)
	}

	indent, closingIndent := categoryIndents(classStr, hasNewline, opts)

	cfg := opts.Formatter
	cfg.Indent = indent

	parsed := extractor.ExtractString(strings.Join(classes, " "), cfg.Viewports)
	lines := Layout(parsed, cfg, opts.Ranker)
	if len(lines) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(closingIndent)

	return b.String(), true
}

// categoryIndents picks the line and closing indentation for categorized output.
func categoryIndents(classStr string, hasNewline bool, opts SortOptions) (string, string) {
	if opts.Indent != "" {
		return opts.Indent, opts.ClosingIndent
	}

	cfg := normalizeConfig(opts.Formatter)
	unit := IndentUnit(cfg.UsesTabs, cfg.TabWidth)

	if hasNewline {
		if existing := existingIndent(classStr); existing != "" {
			return existing, strings.TrimSuffix(existing, unit)
		}
	}

	return strings.Repeat(unit, 4), strings.Repeat(unit, 3)
}

// existingIndent returns the indentation of the first indented line of s.
func existingIndent(s string) string {
	for _, line := range strings.Split(s, "\n")[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if indent := line[:len(line)-len(trimmed)]; indent != "" {
			return indent
		}
	}
	return ""
}

// dedupTokens drops repeated tokens the ranker knows, keeping the first
// occurrence in place.
func dedupTokens(tokens []string, ranker Ranker) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(tokens))

	for _, item := range rankTokens(tokens, ranker) {
		if _, ok := seen[item.Token]; ok {
			continue
		}
		if item.Rank != nil {
			seen[item.Token] = struct{}{}
		}
		result = append(result, item.Token)
	}

	return result
}

var (
	mergeOnce sync.Once
	mergeMu   sync.Mutex
	mergeFn   func(args ...string) string
)

// mergeConflicts keeps only the last of conflicting utilities.
func mergeConflicts(classStr string) string {
	mergeOnce.Do(func() {
		mergeFn = twmerge.CreateTwMerge(twmerge.MakeDefaultConfig(), nil)
	})

	mergeMu.Lock()
	defer mergeMu.Unlock()

	return mergeFn(classStr)
}
