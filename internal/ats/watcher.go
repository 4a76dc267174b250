package ats

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumeats/internal/errors"
)

// LoadKeywordsFile reads a keyword list. Entries are separated by newlines
// or commas; blank entries and lines starting with '#' are ignored.
func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var keywords []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, entry := range strings.Split(line, ",") {
			kw := strings.ToLower(strings.TrimSpace(entry))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file: %w", err)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s has no entries", path)
	}
	return keywords, nil
}

// KeywordWatcher reloads an engine's keyword list when the backing file changes
type KeywordWatcher struct {
	mu sync.Mutex

	path   string
	engine *Engine
	logger *errors.Logger

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	lastModTime   time.Time

	reloadChan chan struct{}
	stopChan   chan struct{}
	running    bool

	// onReload is called after every reload attempt
	onReload func(count int, err error)
}

// NewKeywordWatcher creates a watcher for path feeding engine
func NewKeywordWatcher(path string, engine *Engine, debounceDelay time.Duration, logger *errors.Logger) *KeywordWatcher {
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}
	return &KeywordWatcher{
		path:          path,
		engine:        engine,
		logger:        logger,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
	}
}

// OnReload registers a callback invoked after each reload attempt
func (kw *KeywordWatcher) OnReload(fn func(count int, err error)) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.onReload = fn
}

// Start loads the file once and begins watching it
func (kw *KeywordWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if kw.running {
		return fmt.Errorf("keyword watcher is already running")
	}

	if err := kw.reload(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic renames are seen too
	dir := filepath.Dir(kw.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	// Each run gets its own stop channel so the watcher can be restarted
	kw.fsWatcher = watcher
	kw.stopChan = make(chan struct{})
	kw.running = true
	go kw.watchLoop(watcher, kw.stopChan)

	kw.logger.Info("Keyword file watcher started",
		"file", kw.path,
		"debounce_delay", kw.debounceDelay)
	return nil
}

// Stop stops watching. It is safe to call more than once, and Start may
// be called again afterwards.
func (kw *KeywordWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if !kw.running {
		return nil
	}
	close(kw.stopChan)
	if kw.debounceTimer != nil {
		kw.debounceTimer.Stop()
	}
	kw.running = false

	if err := kw.fsWatcher.Close(); err != nil {
		kw.logger.LogError(err, "Failed to close keyword file watcher")
		return err
	}
	kw.logger.Info("Keyword file watcher stopped")
	return nil
}

func (kw *KeywordWatcher) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if kw.shouldProcessEvent(event) {
				kw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			kw.logger.LogError(err, "Keyword file watcher error")

		case <-kw.reloadChan:
			kw.mu.Lock()
			if kw.hasFileChanged() {
				if err := kw.reload(); err != nil {
					kw.logger.LogError(err, "Failed to reload keywords, keeping previous list", "file", kw.path)
				}
			}
			kw.mu.Unlock()

		case <-stop:
			return
		}
	}
}

func (kw *KeywordWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(kw.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (kw *KeywordWatcher) scheduleReload() {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if kw.debounceTimer != nil {
		kw.debounceTimer.Stop()
	}
	kw.debounceTimer = time.AfterFunc(kw.debounceDelay, func() {
		select {
		case kw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// hasFileChanged must be called with mu held
func (kw *KeywordWatcher) hasFileChanged() bool {
	stat, err := os.Stat(kw.path)
	if err != nil {
		return false
	}
	return !stat.ModTime().Equal(kw.lastModTime)
}

// reload must be called with mu held
func (kw *KeywordWatcher) reload() error {
	keywords, err := LoadKeywordsFile(kw.path)
	if err == nil {
		if stat, statErr := os.Stat(kw.path); statErr == nil {
			kw.lastModTime = stat.ModTime()
		}
		kw.engine.SetKeywords(keywords)
		kw.logger.Info("ATS keywords loaded", "file", kw.path, "count", len(keywords))
	}
	if kw.onReload != nil {
		kw.onReload(len(keywords), err)
	}
	return err
}
