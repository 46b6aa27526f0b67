// Package watch reports settled file changes below a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree. New subdirectories are picked up as
// they appear.
type Watcher struct {
	w        *fsnotify.Watcher
	debounce time.Duration
	match    func(path string) bool
	log      *slog.Logger
}

// New starts watching dir and every directory below it. Only paths for
// which match returns true are reported; a nil match reports everything.
// A change is reported once no further write to it arrived for debounce.
func New(dir string, debounce time.Duration, match func(string) bool, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{w: fw, debounce: debounce, match: match, log: log}
	if err := w.addTree(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.w.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// Run calls fn for every settled change until ctx is cancelled, then
// closes the watcher. fn runs on the Run goroutine, one call at a time.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	defer w.w.Close()

	d := newDebouncer(w.debounce, ctx.Done())
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("watching new directory", "dir", ev.Name, "err", err)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if w.match != nil && !w.match(ev.Name) {
				continue
			}
			d.touch(ev.Name)

		case name := <-d.fired:
			d.settle(name)
			w.log.Debug("file settled", "path", name)
			fn(name)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// debouncer reports a name once no touch arrived for delay. It is not
// safe for concurrent use; only the timers send on fired.
type debouncer struct {
	delay   time.Duration
	pending map[string]*time.Timer
	fired   chan string
	done    <-chan struct{}
}

func newDebouncer(delay time.Duration, done <-chan struct{}) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*time.Timer),
		fired:   make(chan string, 16),
		done:    done,
	}
}

// touch starts or restarts name's timer. A timer that already fired has
// its report in flight, so it is left alone until settle.
func (d *debouncer) touch(name string) {
	if t, ok := d.pending[name]; ok {
		if t.Stop() {
			t.Reset(d.delay)
		}
		return
	}
	d.pending[name] = time.AfterFunc(d.delay, func() {
		select {
		case d.fired <- name:
		case <-d.done:
		}
	})
}

// settle forgets name after its report was received from fired.
func (d *debouncer) settle(name string) {
	delete(d.pending, name)
}

func (d *debouncer) stop() {
	for _, t := range d.pending {
		t.Stop()
	}
}
