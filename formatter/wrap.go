package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapGroups packs groups into lines no wider than printWidth minus the width
// of indent. Groups keep their order and are never split; a group wider than
// the available width gets a line of its own.
func WrapGroups(groups [][]string, printWidth int, indent string, tabWidth int) []string {
	remaining := make([]string, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		remaining = append(remaining, strings.Join(group, " "))
	}

	effectiveWidth := printWidth - IndentWidth(indent, tabWidth)

	var lines []string
	for len(remaining) > 0 {
		count := len(remaining)
		line := strings.Join(remaining[:count], " ")

		for count > 1 && runewidth.StringWidth(line) > effectiveWidth {
			count--
			line = strings.Join(remaining[:count], " ")
		}

		lines = append(lines, line)
		remaining = remaining[count:]
	}

	return lines
}

// IndentWidth measures indent, expanding tabs to tabWidth columns.
func IndentWidth(indent string, tabWidth int) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += tabWidth
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// IndentUnit returns one level of indentation.
func IndentUnit(usesTabs bool, tabWidth int) string {
	if usesTabs {
		return "\t"
	}
	return strings.Repeat(" ", max(tabWidth, 0))
}
