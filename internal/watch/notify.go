package watch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"rsbundle/internal/project"
)

// Notifier delivers changed paths. Events and Errors are closed by Close.
type Notifier interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

// FSNotifier watches every source directory below a root, including
// directories created later, and reports changes to .rs files. Extra files
// outside the tree (Cargo.toml) are watched through their parent directory.
type FSNotifier struct {
	root   string
	extra  map[string]bool
	w      *fsnotify.Watcher
	events chan string
	errs   chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func NewFSNotifier(dir string, files ...string) (*FSNotifier, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New(dir + " is not a directory")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	n := &FSNotifier{
		root:   dir,
		extra:  make(map[string]bool, len(files)),
		w:      w,
		events: make(chan string, 64),
		errs:   make(chan error, 8),
		done:   make(chan struct{}),
	}
	if err := n.addTree(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := n.addFiles(files); err != nil {
		_ = w.Close()
		return nil, err
	}
	n.wg.Add(1)
	go n.loop()
	return n, nil
}

func (n *FSNotifier) Events() <-chan string { return n.events }
func (n *FSNotifier) Errors() <-chan error  { return n.errs }

func (n *FSNotifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		err = n.w.Close()
		n.wg.Wait()
		close(n.events)
		close(n.errs)
	})
	return err
}

func (n *FSNotifier) addTree(dir string) error {
	dirs, err := project.SourceDirs(dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := n.w.Add(d); err != nil {
			return err
		}
	}
	return nil
}

func (n *FSNotifier) addFiles(files []string) error {
	parents := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		n.extra[abs] = true
		if n.inTree(abs) {
			continue
		}
		// редакторы заменяют файл целиком, поэтому смотрим на каталог
		parent := filepath.Dir(abs)
		if parents[parent] {
			continue
		}
		parents[parent] = true
		if err := n.w.Add(parent); err != nil {
			return err
		}
	}
	return nil
}

func (n *FSNotifier) inTree(path string) bool {
	return path == n.root || strings.HasPrefix(path, n.root+string(filepath.Separator))
}

func (n *FSNotifier) loop() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return
		case ev, ok := <-n.w.Events:
			if !ok {
				return
			}
			n.handle(ev)
		case err, ok := <-n.w.Errors:
			if !ok {
				return
			}
			n.sendErr(err)
		}
	}
}

func (n *FSNotifier) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if !n.inTree(ev.Name) {
		if n.extra[ev.Name] {
			n.sendPath(ev.Name)
		}
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := n.addTree(ev.Name); err != nil {
				n.sendErr(err)
			}
			// новый каталог может уже содержать файлы
			files, _ := project.SourceFiles(ev.Name)
			for _, f := range files {
				n.sendPath(f)
			}
			return
		}
	}
	if !relevant(ev.Name) {
		return
	}
	n.sendPath(ev.Name)
}

func (n *FSNotifier) sendPath(path string) {
	select {
	case n.events <- path:
	case <-n.done:
	}
}

func (n *FSNotifier) sendErr(err error) {
	select {
	case n.errs <- err:
	case <-n.done:
	}
}

func relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.HasSuffix(base, ".rs") || base == project.ManifestName
}
