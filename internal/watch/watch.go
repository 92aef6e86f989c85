// Package watch reports changes to source files so they can be recompiled.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher follows a set of files. It watches their directories rather than
// the files, because editors often save by replacing the file.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]bool
	Debounce time.Duration
}

func New(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "start watcher")
	}
	w := &Watcher{w: fw, files: make(map[string]bool), Debounce: DefaultDebounce}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watch %s", dir)
		}
	}
	return w, nil
}

// Run calls onChange with the absolute path of each watched file that was
// written, created or renamed into place. Changes arriving within Debounce
// of each other are delivered together, in path order. Run returns when ctx
// is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	pending := make(map[string]bool)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[path] {
				continue
			}
			pending[path] = true
			fire = time.After(w.Debounce)

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				onChange(p)
			}

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watch")
		}
	}
}

func (w *Watcher) Close() error {
	return w.w.Close()
}
