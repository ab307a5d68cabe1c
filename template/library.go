package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Library finds template files by name across a list of search directories.
// Directories earlier in the list shadow later ones. Parsed files are cached
// until Invalidate is called or Watch sees them change.
type Library struct {
	dirs   []string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*File
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithLogger sets the logger for watch diagnostics.
func WithLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		l.logger = logger
	}
}

// NewLibrary creates a Library searching dirs in order.
func NewLibrary(dirs []string, opts ...LibraryOption) *Library {
	l := &Library{
		dirs:   append([]string(nil), dirs...),
		logger: slog.Default(),
		cache:  make(map[string]*File),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dirs returns the search directories.
func (l *Library) Dirs() []string {
	return append([]string(nil), l.dirs...)
}

// Find loads the template called name. Names may contain slashes to reach
// into subdirectories. A path to an existing file is loaded directly.
func (l *Library) Find(name string) (*File, error) {
	if isFile(name) {
		return l.load(name, Name(filepath.Base(name)))
	}

	for _, dir := range l.dirs {
		for _, ext := range Extensions {
			path := filepath.Join(dir, filepath.FromSlash(name)+ext)
			if isFile(path) {
				return l.load(path, name)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(l.dirs, ", "))
}

func (l *Library) load(path, name string) (*File, error) {
	l.mu.RLock()
	f, ok := l.cache[path]
	l.mu.RUnlock()
	if ok {
		return f, nil
	}

	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	f.Name = name

	l.mu.Lock()
	l.cache[path] = f
	l.mu.Unlock()
	return f, nil
}

// Invalidate drops the cached copy of the file at path.
func (l *Library) Invalidate(path string) {
	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

// Entry describes one template visible through the library.
type Entry struct {
	Name        string
	Path        string
	Description string
	// Err is set when the file exists but does not load.
	Err error
}

// List returns every template visible from the search directories, sorted
// by name. Shadowed files are left out.
func (l *Library) List() ([]Entry, error) {
	seen := make(map[string]bool)
	var entries []Entry

	for _, dir := range l.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				return nil
			}

			name, ok := templateName(dir, path)
			if !ok || seen[name] {
				return nil
			}
			seen[name] = true

			entry := Entry{Name: name, Path: path}
			if f, err := l.load(path, name); err != nil {
				entry.Err = err
			} else {
				entry.Description = f.Description
			}
			entries = append(entries, entry)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list templates in %s: %w", dir, err)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Watch invalidates cached files as they change on disk and sends the name
// of each changed template on the returned channel. The channel is closed
// when ctx is cancelled.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, dir := range l.dirs {
		if err := addTree(watcher, dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	ch := make(chan string, 16)
	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Has(fsnotify.Create) && isDir(event.Name) {
					if err := addTree(watcher, event.Name); err != nil {
						l.logger.Warn("watch new directory", slog.String("path", event.Name), slog.Any("error", err))
					}
					continue
				}

				name, ok := l.nameFor(event.Name)
				if !ok {
					continue
				}
				l.Invalidate(event.Name)
				l.logger.Debug("template changed", slog.String("name", name), slog.String("op", event.Op.String()))

				select {
				case ch <- name:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("template watcher error", slog.Any("error", err))
			}
		}
	}()

	return ch, nil
}

func (l *Library) nameFor(path string) (string, bool) {
	for _, dir := range l.dirs {
		if name, ok := templateName(dir, path); ok {
			return name, true
		}
	}
	return "", false
}

// templateName returns the library name of path inside dir, or false when
// path is not a template file under dir.
func templateName(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	for _, ext := range Extensions {
		if strings.HasSuffix(rel, ext) {
			return filepath.ToSlash(strings.TrimSuffix(rel, ext)), true
		}
	}
	return "", false
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
