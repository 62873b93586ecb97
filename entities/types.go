package entities

// Category is a single named entry of a category configuration.
type Category struct {
	// Name of the category (e.g. "Layout").
	Name string `yaml:"name" json:"name"`

	// Space-separated prefix list (e.g. "flex flex- group*").
	Prefixes string `yaml:"prefixes" json:"prefixes"`
}

// CategoryConfig is an ordered mapping from category name to its prefix list.
// The order is the output order for categorized blocks.
type CategoryConfig []Category

// Names returns category names in declaration order.
func (c CategoryConfig) Names() []string {
	names := make([]string, 0, len(c))
	for _, category := range c {
		names = append(names, category.Name)
	}
	return names
}

// PrefixEntry is one prefix of a category, flattened into the prefix table.
type PrefixEntry struct {
	Category    string // Owning category.
	RawPrefix   string // Prefix as written in the configuration.
	MatchPrefix string // RawPrefix without the trailing wildcard marker.
	IsWildcard  bool   // RawPrefix ended with the wildcard marker.
	Length      int    // Length of MatchPrefix.
}

// CategoryBlock is the materialized, non-empty part of one category.
type CategoryBlock struct {
	Name   string
	Groups [][]string // Tokens sharing one raw prefix, in first-populated order.
}

// Classification is the result of running the classifier over a token list.
type Classification struct {
	Blocks        []CategoryBlock // Categorized blocks in output order.
	Uncategorized []string        // Tokens no phase could place.
}

// ClassParseResult separates static class tokens from dynamic expressions.
type ClassParseResult struct {
	BaseClasses        []string            // Tokens without a viewport prefix.
	ViewportClasses    map[string][]string // Tokens per viewport, prefix stripped.
	DynamicExpressions []string            // Placeholders in source order.
}

// ViewportGrouping selects how viewport tokens are laid out.
type ViewportGrouping string

const (
	GroupingSeparate            ViewportGrouping = "separate"
	GroupingSeparateCategorized ViewportGrouping = "separate-categorized"
	GroupingInline              ViewportGrouping = "inline"
)

// UncategorizedPosition selects where uncategorized tokens are placed.
type UncategorizedPosition string

const (
	UncategorizedBefore UncategorizedPosition = "beforeCategorized"
	UncategorizedAfter  UncategorizedPosition = "afterCategorized"
)

// FormatterConfig holds everything one formatting call needs.
type FormatterConfig struct {
	Categories            CategoryConfig
	Viewports             []string
	ViewportGrouping      ViewportGrouping
	UncategorizedPosition UncategorizedPosition

	PrintWidth int
	TabWidth   int
	UsesTabs   bool

	// Indent is the indentation placed before every output line. When empty,
	// one indentation unit derived from UsesTabs and TabWidth is assumed.
	Indent string

	// GroupUncategorizedIndividually wraps stray tokens one by one instead of
	// keeping them together on a single line.
	GroupUncategorizedIndividually bool
}

// RankedToken is a token with the rank assigned by a ranking oracle.
type RankedToken struct {
	Token string
	Rank  *int64 // Nil when the oracle does not know the token.
}
