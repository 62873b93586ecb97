package formatter

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watch formats files as they are written until ctx is cancelled. Rapid
// saves of one file are collapsed into a single run.
func (p *Processor) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	scope, err := p.resolveScope()
	if err != nil {
		return err
	}
	for _, dir := range scope.watched() {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
		p.log.Debug("Watching directory", zap.String("dir", dir))
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(p.debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			p.handleEvent(watcher, event, scope, pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("Watcher error", zap.Error(err))

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) < p.debounce {
					continue
				}
				delete(pending, path)

				if _, err := p.ProcessFile(ctx, path); err != nil {
					p.log.Error("Error processing file", zap.String("file", path), zap.Error(err))
				}
			}
		}
	}
}

// watchScope holds the directories whose files are all formatted and the
// single files named as roots.
type watchScope struct {
	dirs  map[string]struct{}
	files map[string]struct{}
}

// watched lists the directories the watcher must be added to.
func (s *watchScope) watched() []string {
	dirs := make([]string, 0, len(s.dirs)+len(s.files))
	seen := make(map[string]struct{})
	add := func(dir string) {
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	for dir := range s.dirs {
		add(dir)
	}
	for file := range s.files {
		add(filepath.Dir(file))
	}

	sort.Strings(dirs)
	return dirs
}

// covers reports whether a change to path is in scope.
func (s *watchScope) covers(path string) bool {
	path = filepath.Clean(path)
	if _, ok := s.files[path]; ok {
		return true
	}
	_, ok := s.dirs[filepath.Dir(path)]
	return ok
}

// handleEvent queues written source files in scope and follows new
// directories in recursive mode.
func (p *Processor) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, scope *watchScope, pending map[string]time.Time) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) && p.cfg.Recursive {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if scope.covers(event.Name) && !p.excluded(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					p.log.Warn("Failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
					return
				}
				scope.dirs[filepath.Clean(event.Name)] = struct{}{}
			}
			return
		}
	}

	if scope.covers(event.Name) && p.selected(event.Name) {
		pending[event.Name] = time.Now()
	}
}

// resolveScope resolves the configured roots into watched directories and
// single files.
func (p *Processor) resolveScope() (*watchScope, error) {
	roots := p.cfg.Paths
	if len(roots) == 0 {
		roots = []string{p.cfg.Dir}
	}

	scope := &watchScope{
		dirs:  make(map[string]struct{}),
		files: make(map[string]struct{}),
	}
	for _, root := range roots {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", root)
		}

		if !info.IsDir() {
			scope.files[root] = struct{}{}
			continue
		}

		if !p.cfg.Recursive {
			scope.dirs[root] = struct{}{}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && p.excluded(path) {
				return filepath.SkipDir
			}
			scope.dirs[path] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "walking directory")
		}
	}

	return scope, nil
}
