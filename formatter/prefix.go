package formatter

import (
	"sort"
	"strings"

	"classfmt/entities"
)

const (
	wildcardMarker      = "*"
	interpolationMarker = "${"
)

// PrefixTable is the flattened, longest-first view of a category configuration.
type PrefixTable struct {
	// Entries sorted by MatchPrefix length, longest first.
	Entries []entities.PrefixEntry

	// Category names in declaration order (duplicates merged).
	categories []string

	// Raw prefixes per category in declaration order.
	rawPrefixes map[string][]string
}

// BuildPrefixTable turns a category configuration into a prefix table.
func BuildPrefixTable(cfg entities.CategoryConfig) *PrefixTable {
	table := &PrefixTable{
		rawPrefixes: make(map[string][]string),
	}

	for _, category := range cfg {
		if _, exists := table.rawPrefixes[category.Name]; !exists {
			table.categories = append(table.categories, category.Name)
			table.rawPrefixes[category.Name] = nil
		}

		for _, rawPrefix := range strings.Fields(category.Prefixes) {
			// The same raw prefix twice in one category shares a bucket.
			if containsString(table.rawPrefixes[category.Name], rawPrefix) {
				continue
			}
			table.rawPrefixes[category.Name] = append(table.rawPrefixes[category.Name], rawPrefix)

			matchPrefix := strings.TrimSuffix(rawPrefix, wildcardMarker)
			table.Entries = append(table.Entries, entities.PrefixEntry{
				Category:    category.Name,
				RawPrefix:   rawPrefix,
				MatchPrefix: matchPrefix,
				IsWildcard:  matchPrefix != rawPrefix,
				Length:      len(matchPrefix),
			})
		}
	}

	// Stable: equal lengths keep declaration order.
	sort.SliceStable(table.Entries, func(i, j int) bool {
		return table.Entries[i].Length > table.Entries[j].Length
	})

	return table
}

// Categories returns category names in declaration order.
func (t *PrefixTable) Categories() []string {
	return t.categories
}

// RawPrefixes returns the raw prefixes of a category in declaration order.
func (t *PrefixTable) RawPrefixes(category string) []string {
	return t.rawPrefixes[category]
}

// Empty reports whether the table has no entries.
func (t *PrefixTable) Empty() bool {
	return len(t.Entries) == 0
}

// HasPrefix reports whether s starts with any match prefix of the table.
func (t *PrefixTable) HasPrefix(s string) bool {
	for _, entry := range t.Entries {
		if strings.HasPrefix(s, entry.MatchPrefix) {
			return true
		}
	}
	return false
}

// Match returns the most specific entry matching token, if any.
func (t *PrefixTable) Match(token string, viewports []string) (entities.PrefixEntry, bool) {
	matchText := literalMatchText(token, viewports)

	for _, entry := range t.Entries {
		if entry.IsWildcard {
			if token == entry.MatchPrefix ||
				strings.HasPrefix(token, entry.MatchPrefix+"-") ||
				strings.HasPrefix(token, entry.MatchPrefix+"/") {
				return entry, true
			}
			continue
		}

		if strings.HasPrefix(matchText, entry.MatchPrefix) {
			return entry, true
		}
	}

	return entities.PrefixEntry{}, false
}

// literalMatchText strips a configured viewport prefix and cuts the token at
// the first interpolation marker.
func literalMatchText(token string, viewports []string) string {
	text := stripViewport(token, viewports)
	if idx := strings.Index(text, interpolationMarker); idx >= 0 {
		text = text[:idx]
	}
	return text
}

// stripViewport removes the first matching "<viewport>:" prefix.
func stripViewport(token string, viewports []string) string {
	for _, viewport := range viewports {
		if rest, ok := strings.CutPrefix(token, viewport+":"); ok {
			return rest
		}
	}
	return token
}

// containsString checks if a slice contains the given string.
func containsString(values []string, s string) bool {
	for _, value := range values {
		if value == s {
			return true
		}
	}
	return false
}
