// Package importwatch watches a drop directory for card list files and
// imports each one as a new collection. Drop a .txt, .csv or .json file in
// the watched directory and a collection named after the file appears.
package importwatch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/portalmtg/portal/internal/collection"
	"github.com/portalmtg/portal/internal/events"
	"github.com/portalmtg/portal/internal/importer"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 200 * time.Millisecond

// Watcher monitors a directory and imports dropped card list files.
type Watcher struct {
	dir        string
	importer   *importer.Service
	manager    *collection.Manager
	dispatcher *events.Dispatcher

	stopChan chan struct{}
}

// New creates a watcher for dir. The directory must already exist.
func New(dir string, svc *importer.Service, manager *collection.Manager, dispatcher *events.Dispatcher) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}

	return &Watcher{
		dir:        dir,
		importer:   svc,
		manager:    manager,
		dispatcher: dispatcher,
		stopChan:   make(chan struct{}),
	}, nil
}

// Run watches the directory until the context is cancelled or Stop is
// called. Each created or written file is imported once it settles.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	log.Printf("[ImportWatch] Watching %s for card list files", w.dir)

	// Debounce repeated write events per file.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && supportedFile(event.Name) {
				pending[event.Name] = time.Now()
			}
		case err := <-watcher.Errors:
			log.Printf("[ImportWatch] Watcher error: %v", err)
		case now := <-ticker.C:
			for path, stamp := range pending {
				if now.Sub(stamp) < settleDelay {
					continue
				}
				delete(pending, path)
				w.importFile(ctx, path)
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".csv", ".json":
		return true
	}
	return false
}

// importFile imports one dropped file as a collection named after it.
func (w *Watcher) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[ImportWatch] Failed to read %s: %v", path, err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var result importer.Result
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		result = w.importer.ImportText(ctx, string(data))
	case ".csv":
		result = w.importer.ImportCSV(ctx, string(data))
	case ".json":
		result, err = w.importer.ImportSnapshot(data)
		if err != nil {
			log.Printf("[ImportWatch] Failed to parse snapshot %s: %v", path, err)
			return
		}
	}

	col, err := w.manager.CreateFromImport(ctx, name, result.Holding.IDs, result.Holding.Quantities)
	if err != nil {
		log.Printf("[ImportWatch] Failed to create collection from %s: %v", path, err)
		return
	}

	log.Printf("[ImportWatch] Imported %s: %d resolved, %d unresolved, %d skipped",
		filepath.Base(path), result.Resolved, result.Unresolved, result.Skipped)

	if w.dispatcher != nil {
		w.dispatcher.Dispatch(events.Event{
			Type: events.TypeImportCompleted,
			Data: events.ImportCompleted{
				CollectionID: col.ID,
				Name:         col.Name,
				Resolved:     result.Resolved,
				Unresolved:   result.Unresolved,
				Skipped:      result.Skipped,
			},
		})
	}
}
