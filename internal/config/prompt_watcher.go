package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"infiniteats/internal/errors"
)

// PromptWatcher reloads prompt template files into a PromptSet when they
// change on disk. A file that fails validation is logged and ignored; the
// previous template stays active.
type PromptWatcher struct {
	mu sync.Mutex

	files       map[string]string // operation -> path
	lastModTime map[string]time.Time
	set         *PromptSet

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	doneChan   chan struct{}

	onReload func(operation string, err error)
	logger   *errors.Logger
	running  bool
}

// NewPromptWatcher creates a watcher for the prompt files configured in cfg.
// It returns nil when no prompt files are configured.
func NewPromptWatcher(cfg *Config, logger *errors.Logger) *PromptWatcher {
	files := cfg.promptFiles()
	if len(files) == 0 {
		return nil
	}
	delay := cfg.Prompts.DebounceDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &PromptWatcher{
		files:         files,
		lastModTime:   make(map[string]time.Time),
		set:           cfg.PromptSet(),
		debounceDelay: delay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		doneChan:      make(chan struct{}),
		logger:        logger,
	}
}

// OnReload registers a callback invoked after each reload attempt.
func (pw *PromptWatcher) OnReload(fn func(operation string, err error)) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.onReload = fn
}

// Start begins watching.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher

	dirs := make(map[string]bool)
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
		// Watch the directory so editors that write via rename are seen
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	if pw.logger != nil {
		pw.logger.Info("Prompt file watcher started", "files", pw.files, "debounce_delay", pw.debounceDelay)
	}
	return nil
}

// Stop stops the watcher and waits for its loop to exit.
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.running = false
	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	err := pw.fsWatcher.Close()
	pw.mu.Unlock()

	<-pw.doneChan
	if pw.logger != nil {
		pw.logger.Info("Prompt file watcher stopped")
	}
	return err
}

func (pw *PromptWatcher) watchLoop() {
	defer close(pw.doneChan)
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.isWatched(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.LogError(err, "Prompt watcher error")
			}

		case <-pw.reloadChan:
			pw.reloadChanged()

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) isWatched(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, file := range pw.files {
		if filepath.Clean(event.Name) == filepath.Clean(file) || filepath.Base(event.Name) == filepath.Base(file) {
			return true
		}
	}
	return false
}

func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (pw *PromptWatcher) reloadChanged() {
	pw.mu.Lock()
	callback := pw.onReload
	pw.mu.Unlock()

	for operation, file := range pw.files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}
		if last, ok := pw.lastModTime[file]; ok && !stat.ModTime().After(last) {
			continue
		}
		pw.lastModTime[file] = stat.ModTime()

		err = loadPromptInto(pw.set, operation, file)
		if pw.logger != nil {
			if err != nil {
				pw.logger.LogError(err, "Rejected reloaded prompt, keeping previous template", "operation", operation, "file", file)
			} else {
				pw.logger.Info("Reloaded prompt template", "operation", operation, "file", file)
			}
		}
		if callback != nil {
			callback(operation, err)
		}
	}
}
