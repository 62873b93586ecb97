package formatter

import (
	"strings"

	"classfmt/entities"
)

const (
	defaultPrintWidth = 80
	defaultTabWidth   = 2
)

// Layout renders a parse result into output lines according to the viewport
// grouping of cfg. Dynamic placeholders always come last, in source order.
// ranker is optional and reorders categorized blocks.
func Layout(parsed entities.ClassParseResult, cfg entities.FormatterConfig, ranker Ranker) []string {
	cfg = normalizeConfig(cfg)

	var lines []string
	switch cfg.ViewportGrouping {
	case entities.GroupingInline:
		lines = layoutInline(parsed, cfg, ranker)
	case entities.GroupingSeparateCategorized:
		lines = layoutSeparate(parsed, cfg, ranker, true)
	default:
		lines = layoutSeparate(parsed, cfg, ranker, false)
	}

	return append(lines, parsed.DynamicExpressions...)
}

// layoutSeparate formats base tokens first, then every viewport on its own.
// Unless categorized is set, each viewport collapses into a single line.
func layoutSeparate(parsed entities.ClassParseResult, cfg entities.FormatterConfig, ranker Ranker, categorized bool) []string {
	lines := CategorizeLines(parsed.BaseClasses, cfg, ranker)

	for _, viewport := range cfg.Viewports {
		tokens := parsed.ViewportClasses[viewport]
		if len(tokens) == 0 {
			continue
		}

		viewportLines := CategorizeLines(prefixTokens(viewport, tokens), cfg, ranker)
		if len(viewportLines) == 0 {
			continue
		}

		if categorized {
			lines = append(lines, viewportLines...)
		} else {
			lines = append(lines, strings.Join(viewportLines, " "))
		}
	}

	return lines
}

// layoutInline classifies base and viewport tokens together.
func layoutInline(parsed entities.ClassParseResult, cfg entities.FormatterConfig, ranker Ranker) []string {
	all := append([]string(nil), parsed.BaseClasses...)
	for _, viewport := range cfg.Viewports {
		all = append(all, prefixTokens(viewport, parsed.ViewportClasses[viewport])...)
	}
	return CategorizeLines(all, cfg, ranker)
}

// CategorizeLines classifies tokens with cfg.Categories and wraps every block
// into lines. Uncategorized tokens are placed per cfg.UncategorizedPosition.
func CategorizeLines(tokens []string, cfg entities.FormatterConfig, ranker Ranker) []string {
	if len(tokens) == 0 {
		return nil
	}
	cfg = normalizeConfig(cfg)

	classification := Classify(tokens, ClassifyOptions{
		Viewports: cfg.Viewports,
		Ranker:    ranker,
	}, cfg.Categories)

	indent := lineIndent(cfg)

	var lines []string
	for _, block := range classification.Blocks {
		lines = append(lines, WrapGroups(block.Groups, cfg.PrintWidth, indent, cfg.TabWidth)...)
	}

	if len(classification.Uncategorized) == 0 {
		return lines
	}

	var groups [][]string
	if cfg.GroupUncategorizedIndividually {
		for _, token := range classification.Uncategorized {
			groups = append(groups, []string{token})
		}
	} else {
		groups = [][]string{classification.Uncategorized}
	}
	uncategorizedLines := WrapGroups(groups, cfg.PrintWidth, indent, cfg.TabWidth)

	if cfg.UncategorizedPosition == entities.UncategorizedBefore {
		return append(uncategorizedLines, lines...)
	}
	return append(lines, uncategorizedLines...)
}

func prefixTokens(viewport string, tokens []string) []string {
	prefixed := make([]string, 0, len(tokens))
	for _, token := range tokens {
		prefixed = append(prefixed, viewport+":"+token)
	}
	return prefixed
}

func lineIndent(cfg entities.FormatterConfig) string {
	if cfg.Indent != "" {
		return cfg.Indent
	}
	return IndentUnit(cfg.UsesTabs, cfg.TabWidth)
}

func normalizeConfig(cfg entities.FormatterConfig) entities.FormatterConfig {
	if cfg.PrintWidth <= 0 {
		cfg.PrintWidth = defaultPrintWidth
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = defaultTabWidth
	}
	return cfg
}
