// Package watch reloads scripts when the scripts folders change.
//
// It monitors every existing folder of a folder set recursively and invokes
// a callback after a debounce period. Events within the debounce window are
// coalesced so the callback fires once with the full set of changed paths.
package watch

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// DefaultPatterns select script files and their help sidecars.
var DefaultPatterns = []string{"**/*.rsx", "**/*.rsx.help"}

// ignores lists paths that never trigger callbacks.
var ignores = []string{
	"**/.git/**",
	"**/*.tmp",
	"**/*.tmp/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Folders are watched recursively. Folders that do not exist are skipped.
	Folders []string

	// Patterns are doublestar globs matched against paths relative to the
	// folder that contains them. Empty uses DefaultPatterns.
	Patterns []string

	// Debounce is the quiet period after the last event before the callback
	// fires. Zero or negative values use DefaultDebounce.
	Debounce time.Duration

	// OnChange is called with the deduplicated changed paths (absolute).
	OnChange func(ctx context.Context, changed []string) error

	// Stderr receives warnings. Nil defaults to os.Stderr.
	Stderr io.Writer
}

// Watcher monitors the scripts folders. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    []string
	dirs     map[string]struct{} // watched directories, touched only by New and Run
	patterns []string
	debounce time.Duration
	stderr   io.Writer
	started  atomic.Bool
}

// New validates cfg and registers every directory below the existing
// folders.
func New(cfg Config) (*Watcher, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var roots []string
	for _, f := range cfg.Folders {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		// fsnotify reports events under the path that was added, and
		// WalkDir does not descend into a symlinked root.
		if abs, err = filepath.EvalSymlinks(abs); err != nil {
			continue
		}
		if !slices.Contains(roots, abs) {
			roots = append(roots, abs)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("watch: none of the folders %v exist", cfg.Folders)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		dirs:     make(map[string]struct{}),
		patterns: patterns,
		debounce: debounce,
		stderr:   stderr,
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the folders being watched, with symlinks resolved.
func (w *Watcher) Roots() []string { return slices.Clone(w.roots) }

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire runs OnChange with the pending set. A run still in progress
	// postpones the next one instead of overlapping it.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: reload failed: %v\n", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			rel, ok := w.relative(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			// A new directory may arrive already populated (a finished
			// clone is renamed into place), so it always triggers a reload.
			isDir := evt.Has(fsnotify.Create) && w.maybeAddDir(evt.Name)
			// Removing or moving away a directory reports only the
			// directory, not the scripts inside it.
			if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
				isDir = w.forgetDir(evt.Name) || isDir
			}
			if !isDir && !w.matches(rel) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// addTree registers root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(w.stderr, "watch: skipping inaccessible path %q: %v\n", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && w.isIgnored(rel+"/") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		w.dirs[path] = struct{}{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

// maybeAddDir watches path if it is a directory and reports whether it was.
func (w *Watcher) maybeAddDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := w.addTree(path); err != nil {
		fmt.Fprintf(w.stderr, "%v\n", err)
	}
	return true
}

// forgetDir drops path and everything below it from the watched directories
// and reports whether path was one of them.
func (w *Watcher) forgetDir(path string) bool {
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
	return true
}

// relative returns path relative to the watched root containing it.
func (w *Watcher) relative(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Watcher) matches(rel string) bool {
	for _, pat := range w.patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}
