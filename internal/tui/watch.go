package tui

import (
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 400 * time.Millisecond

type reloadMsg struct{}

// dbWatcher watches the workspace database for writes from other
// processes. SQLite in WAL mode touches sidecar files next to the db, so
// the workspace dir is watched and events are filtered by basename prefix.
type dbWatcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

func watchDB(path string, out chan<- tea.Msg) (*dbWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &dbWatcher{fw: fw, done: make(chan struct{})}
	prefix := filepath.Base(path)

	go func() {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), prefix) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
					fire = timer.C
				} else {
					timer.Reset(reloadDebounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				select {
				case out <- reloadMsg{}:
				default:
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

func (w *dbWatcher) Close() {
	close(w.done)
	_ = w.fw.Close()
}
