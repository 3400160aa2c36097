package dataset

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lehmann314159/tangocho/internal/models"
)

const debounce = 100 * time.Millisecond

// Watcher monitors the module data directories and reports which module's
// dataset changed
type Watcher struct {
	Root     string
	OnChange func(moduleType string)

	dirs    map[string]string // directory -> module type
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given modules under root
func NewWatcher(root string, modules []models.ModuleConfig, onChange func(moduleType string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]string, len(modules))
	for _, m := range modules {
		p := m.Path
		if p == "" {
			p = ModulePath(m.Type)
		}
		dirs[filepath.Clean(filepath.Join(root, filepath.Dir(filepath.FromSlash(p))))] = m.Type
	}

	return &Watcher{
		Root:     root,
		OnChange: onChange,
		dirs:     dirs,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start adds every existing module directory and begins watching. Missing
// directories are skipped.
func (w *Watcher) Start() error {
	added := 0
	for dir := range w.dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Printf("[dataset] not watching %s: %v", dir, err)
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.watcher.Close()
			return err
		}
		added++
	}
	log.Printf("[dataset] watching %d module directories under %s", added, w.Root)

	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for moduleType := range pending {
					w.emit(moduleType)
				}
				return
			}

			moduleType, ok := w.moduleFor(event.Name)
			if !ok {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[moduleType] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for moduleType, t := range pending {
				if now.Sub(t) >= debounce {
					w.emit(moduleType)
					delete(pending, moduleType)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[dataset] watch error: %v", err)
		}
	}
}

func (w *Watcher) moduleFor(name string) (string, bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	moduleType, ok := w.dirs[filepath.Clean(filepath.Dir(name))]
	return moduleType, ok
}

func (w *Watcher) emit(moduleType string) {
	log.Printf("[dataset] %s dataset changed", moduleType)
	if w.OnChange != nil {
		w.OnChange(moduleType)
	}
}
