package formatter

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classfmt/config"
)

// ErrUnformatted is returned in check mode when a file would change.
var ErrUnformatted = errors.New("some files are not formatted")

const defaultDebounce = 200 * time.Millisecond

// Summary counts the outcome of a run.
type Summary struct {
	Files   int
	Changed int
	Failed  int
}

// Processor formats class attributes in files on disk.
type Processor struct {
	cfg      *config.Config
	log      *zap.Logger
	ranker   Ranker
	debounce time.Duration
}

// Option customizes a Processor.
type Option func(*Processor)

// WithRanker replaces the default category ranker.
func WithRanker(r Ranker) Option {
	return func(p *Processor) { p.ranker = r }
}

// WithDebounce sets how long Watch waits for a file to settle.
func WithDebounce(d time.Duration) Option {
	return func(p *Processor) { p.debounce = d }
}

// NewProcessor creates a Processor for cfg.
func NewProcessor(cfg *config.Config, log *zap.Logger, opts ...Option) *Processor {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Processor{
		cfg:      cfg,
		log:      log,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.ranker == nil {
		p.ranker = NewCachedRanker(NewCategoryRanker(cfg.Formatter.Categories, cfg.Formatter.Viewports), 0)
	}

	return p
}

func (p *Processor) rewriteOptions() RewriteOptions {
	return RewriteOptions{
		AttributeNames: p.cfg.AttributeNames,
		Formatter:      p.cfg.Formatter,
		Sort: SortOptions{
			Ranker:             p.ranker,
			PreserveDuplicates: p.cfg.PreserveDuplicates,
			PreserveWhitespace: p.cfg.PreserveWhitespace,
			MergeConflicts:     p.cfg.MergeConflicts,
			UseCategories:      p.cfg.UseCategories,
		},
	}
}

// ProcessFile formats a single file. It reports whether the file changed, or
// would change in dry-run and check modes.
func (p *Processor) ProcessFile(ctx context.Context, filename string) (bool, error) {
	lang, ok := LanguageForPath(filename)
	if !ok {
		return false, errors.Errorf("unsupported file type: %s", filename)
	}

	code, err := os.ReadFile(filename)
	if err != nil {
		return false, errors.Wrap(err, "reading file")
	}

	// Generated files are left alone.
	if IsGeneratedFile(code) {
		p.log.Debug("Skipping generated file", zap.String("file", filename))
		return false, nil
	}

	newContent, err := RewriteFile(ctx, lang, code, p.rewriteOptions())
	if err != nil {
		return false, errors.Wrap(err, "rewriting file")
	}

	// Skip writing if content didn't change.
	if bytes.Equal(code, newContent) {
		return false, nil
	}

	if p.cfg.DryRun || p.cfg.Check {
		p.log.Info("Would process", zap.String("file", filename))
		return true, nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return false, errors.Wrap(err, "stat file")
	}

	err = os.WriteFile(filename, newContent, info.Mode().Perm())
	if err != nil {
		return false, errors.Wrap(err, "writing file")
	}
	p.log.Info("Processed", zap.String("file", filename))

	return true, nil
}

// Run formats every file selected by the configuration. Per-file errors are
// logged and counted. In check mode ErrUnformatted is returned when any
// file would change.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	files, err := p.Files()
	if err != nil {
		return Summary{}, err
	}

	var changed, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Concurrency, 1))

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ok, err := p.ProcessFile(ctx, file)
			if err != nil {
				failed.Add(1)
				p.log.Error("Error processing file", zap.String("file", file), zap.Error(err))
				return nil
			}
			if ok {
				changed.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	summary := Summary{
		Files:   len(files),
		Changed: int(changed.Load()),
		Failed:  int(failed.Load()),
	}
	if err != nil {
		return summary, errors.Wrap(err, "processing files")
	}

	if p.cfg.Check && summary.Changed > 0 {
		return summary, ErrUnformatted
	}

	return summary, nil
}

// Files lists the source files selected by Paths, or by Dir when no paths
// are given.
func (p *Processor) Files() ([]string, error) {
	roots := p.cfg.Paths
	if len(roots) == 0 {
		roots = []string{p.cfg.Dir}
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", root)
		}

		if !info.IsDir() {
			if _, ok := LanguageForPath(root); ok {
				add(root)
			}
			continue
		}

		found, err := p.dirFiles(root)
		if err != nil {
			return nil, err
		}
		for _, file := range found {
			add(file)
		}
	}

	return files, nil
}

// dirFiles lists supported files in dir, walking subdirectories when
// Recursive is set.
func (p *Processor) dirFiles(dir string) ([]string, error) {
	var files []string

	if p.cfg.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != dir && p.excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if p.selected(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "walking directory")
		}
		return files, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !entry.IsDir() && p.selected(path) {
			files = append(files, path)
		}
	}

	return files, nil
}

func (p *Processor) selected(path string) bool {
	if _, ok := LanguageForPath(path); !ok {
		return false
	}
	return !p.excluded(path)
}

// excluded reports whether path matches an exclude pattern. Glob patterns
// are matched against the slash path and the base name, plain ones against
// each path segment.
func (p *Processor) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	segments := strings.Split(slashed, "/")

	for _, pattern := range p.cfg.Exclude {
		if pattern == "" {
			continue
		}

		if isGlob(pattern) {
			if globMatch(pattern, slashed) || globMatch(pattern, segments[len(segments)-1]) {
				return true
			}
			continue
		}

		for _, segment := range segments {
			if strings.Contains(segment, pattern) {
				return true
			}
		}
	}
	return false
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// globMatch treats malformed patterns as non-matching.
func globMatch(pattern, name string) bool {
	matched, err := doublestar.Match(pattern, name)
	return err == nil && matched
}
