package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"classfmt/entities"
)

// Config holds the configuration for the class formatter.
type Config struct {
	Dir         string
	Paths       []string
	Recursive   bool
	DryRun      bool
	Check       bool
	Watch       bool
	Exclude     []string
	Concurrency int
	ConfigPath  string
	LogLevel    string

	// CategoriesPath names a category file replacing the default categories.
	CategoriesPath string

	// Sorting behavior.
	AttributeNames     []string
	UseCategories      bool
	PreserveDuplicates bool
	PreserveWhitespace bool
	MergeConflicts     bool

	Formatter entities.FormatterConfig

	viewportGrouping      string
	uncategorizedPosition string
}

// FileConfig is the on-disk options file. JSON files parse as YAML.
type FileConfig struct {
	Categories                     yaml.Node `yaml:"categories"`
	Viewports                      []string  `yaml:"viewports"`
	ViewportGrouping               string    `yaml:"viewportGrouping"`
	UncategorizedPosition          string    `yaml:"uncategorizedPosition"`
	GroupUncategorizedIndividually *bool     `yaml:"groupUncategorizedIndividually"`
	PrintWidth                     *int      `yaml:"printWidth"`
	TabWidth                       *int      `yaml:"tabWidth"`
	UseTabs                        *bool     `yaml:"useTabs"`
	Attributes                     []string  `yaml:"attributes"`
	Exclude                        []string  `yaml:"exclude"`
	UseCategories                  *bool     `yaml:"useCategories"`
	PreserveDuplicates             *bool     `yaml:"preserveDuplicates"`
	PreserveWhitespace             *bool     `yaml:"preserveWhitespace"`
	MergeConflicts                 *bool     `yaml:"mergeConflicts"`
}

// New returns a Config filled with defaults.
func New() *Config {
	return &Config{
		Dir:                   ".",
		Exclude:               []string{"node_modules"},
		Concurrency:           4,
		LogLevel:              "info",
		AttributeNames:        []string{"className", "class"},
		UseCategories:         true,
		Formatter:             DefaultFormatterConfig(),
		viewportGrouping:      string(entities.GroupingSeparate),
		uncategorizedPosition: string(entities.UncategorizedAfter),
	}
}

// BindFlags registers the command line flags of c on fs.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Dir, "dir", c.Dir, "Directory to process")
	fs.BoolVarP(&c.Recursive, "recursive", "r", c.Recursive, "Process files recursively")
	fs.BoolVarP(&c.DryRun, "dry-run", "d", c.DryRun, "Don't write changes, just report")
	fs.BoolVar(&c.Check, "check", c.Check, "Exit with an error when a file is not formatted")
	fs.BoolVarP(&c.Watch, "watch", "w", c.Watch, "Reformat files as they change")
	fs.StringSliceVar(&c.Exclude, "exclude", c.Exclude, "Path segments or glob patterns to skip")
	fs.IntVarP(&c.Concurrency, "concurrency", "j", c.Concurrency, "Files processed in parallel")
	fs.StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "Path to options file (YAML or JSON)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.CategoriesPath, "categories-file", c.CategoriesPath, "Path to category definitions (YAML or JSON)")

	fs.StringSliceVar(&c.AttributeNames, "attributes", c.AttributeNames, "Attributes holding classes")
	fs.BoolVar(&c.UseCategories, "categories", c.UseCategories, "Expand long class lists into category lines")
	fs.BoolVar(&c.PreserveDuplicates, "preserve-duplicates", c.PreserveDuplicates, "Keep duplicate classes")
	fs.BoolVar(&c.PreserveWhitespace, "preserve-whitespace", c.PreserveWhitespace, "Keep whitespace between classes")
	fs.BoolVar(&c.MergeConflicts, "merge-conflicts", c.MergeConflicts, "Drop classes overridden by later conflicting ones")

	// Layout flags.
	fs.IntVar(&c.Formatter.PrintWidth, "print-width", c.Formatter.PrintWidth, "Maximum line width")
	fs.IntVar(&c.Formatter.TabWidth, "tab-width", c.Formatter.TabWidth, "Width of one indentation level")
	fs.BoolVar(&c.Formatter.UsesTabs, "use-tabs", c.Formatter.UsesTabs, "Indent with tabs")
	fs.StringSliceVar(&c.Formatter.Viewports, "viewports", c.Formatter.Viewports, "Viewport prefixes in order")
	fs.StringVar(&c.viewportGrouping, "viewport-grouping", c.viewportGrouping, "separate, separate-categorized or inline")
	fs.StringVar(&c.uncategorizedPosition, "uncategorized", c.uncategorizedPosition, "beforeCategorized or afterCategorized")
	fs.BoolVar(&c.Formatter.GroupUncategorizedIndividually, "split-uncategorized", c.Formatter.GroupUncategorizedIndividually, "Wrap uncategorized classes one by one")
}

// LoadFile reads an options file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	var fc FileConfig
	err = yaml.Unmarshal(data, &fc)
	if err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}

	return &fc, nil
}

// Apply copies the values of fc into c. Settings for which changed reports
// true were given on the command line and win over the file.
func (c *Config) Apply(fc *FileConfig, changed func(flag string) bool) error {
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if fc.Categories.Kind != 0 {
		categories, err := decodeCategories(&fc.Categories)
		if err != nil {
			return err
		}
		c.Formatter.Categories = categories
	}

	if len(fc.Viewports) > 0 && !changed("viewports") {
		c.Formatter.Viewports = fc.Viewports
	}
	if fc.ViewportGrouping != "" && !changed("viewport-grouping") {
		c.viewportGrouping = fc.ViewportGrouping
	}
	if fc.UncategorizedPosition != "" && !changed("uncategorized") {
		c.uncategorizedPosition = fc.UncategorizedPosition
	}
	if len(fc.Attributes) > 0 && !changed("attributes") {
		c.AttributeNames = fc.Attributes
	}
	if len(fc.Exclude) > 0 && !changed("exclude") {
		c.Exclude = fc.Exclude
	}

	applyInt(&c.Formatter.PrintWidth, fc.PrintWidth, changed("print-width"))
	applyInt(&c.Formatter.TabWidth, fc.TabWidth, changed("tab-width"))
	applyBool(&c.Formatter.UsesTabs, fc.UseTabs, changed("use-tabs"))
	applyBool(&c.Formatter.GroupUncategorizedIndividually, fc.GroupUncategorizedIndividually, changed("split-uncategorized"))
	applyBool(&c.UseCategories, fc.UseCategories, changed("categories"))
	applyBool(&c.PreserveDuplicates, fc.PreserveDuplicates, changed("preserve-duplicates"))
	applyBool(&c.PreserveWhitespace, fc.PreserveWhitespace, changed("preserve-whitespace"))
	applyBool(&c.MergeConflicts, fc.MergeConflicts, changed("merge-conflicts"))

	return nil
}

// Finalize validates the enumerated settings and resolves them into
// Formatter.
func (c *Config) Finalize() error {
	grouping := entities.ViewportGrouping(c.viewportGrouping)
	switch grouping {
	case entities.GroupingSeparate, entities.GroupingSeparateCategorized, entities.GroupingInline:
		c.Formatter.ViewportGrouping = grouping
	default:
		return errors.Errorf("invalid viewport grouping %q", c.viewportGrouping)
	}

	position := entities.UncategorizedPosition(c.uncategorizedPosition)
	switch position {
	case entities.UncategorizedBefore, entities.UncategorizedAfter:
		c.Formatter.UncategorizedPosition = position
	default:
		return errors.Errorf("invalid uncategorized position %q", c.uncategorizedPosition)
	}

	if c.Concurrency < 1 {
		c.Concurrency = 1
	}

	return nil
}

// LoadCategories reads a category file mapping category names to
// space-separated prefixes. Declaration order is kept.
func LoadCategories(path string) (entities.CategoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading categories file")
	}

	var doc yaml.Node
	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "parsing categories file")
	}

	switch doc.Kind {
	case 0:
		return entities.CategoryConfig{}, nil
	case yaml.DocumentNode:
		if len(doc.Content) == 0 {
			return entities.CategoryConfig{}, nil
		}
		return decodeCategories(doc.Content[0])
	}

	return decodeCategories(&doc)
}

// ResolveCategories loads the categories at path. When path is empty or the
// file cannot be used, fallback is returned, along with the load error if any.
func ResolveCategories(path string, fallback entities.CategoryConfig) (entities.CategoryConfig, error) {
	if path == "" {
		return fallback, nil
	}

	categories, err := LoadCategories(path)
	if err != nil {
		return fallback, err
	}

	return categories, nil
}

// decodeCategories reads an ordered mapping of category name to prefixes.
func decodeCategories(node *yaml.Node) (entities.CategoryConfig, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return entities.CategoryConfig{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("categories: line %d: expected a mapping", node.Line)
	}

	categories := make(entities.CategoryConfig, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if value.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("categories: line %d: prefixes of %q must be a string", value.Line, key.Value)
		}

		categories = append(categories, entities.Category{
			Name:     key.Value,
			Prefixes: strings.TrimSpace(value.Value),
		})
	}

	return categories, nil
}

func applyInt(dst *int, src *int, flagSet bool) {
	if src != nil && !flagSet {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool, flagSet bool) {
	if src != nil && !flagSet {
		*dst = *src
	}
}
