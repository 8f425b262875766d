package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sonroyaalmerol/kmsglog/internal/syslog"
)

const debounceInterval = 100 * time.Millisecond

// ConfigWatcher re-parses a config file after it changes and hands the
// result to a callback. Bursts of events within debounceInterval produce a
// single callback.
type ConfigWatcher struct {
	mu            sync.Mutex
	watcher       *fsnotify.Watcher
	config        *SectionConfig
	callback      WatchCallback
	debounceTimer *time.Timer
	filename      string
	closed        bool
	done          chan struct{}
}

func NewConfigWatcher(config *SectionConfig, callback WatchCallback) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &ConfigWatcher{
		watcher:  watcher,
		config:   config,
		callback: callback,
		done:     make(chan struct{}),
	}, nil
}

// Watch starts watching filename. Its directory is watched as well so that
// editors replacing the file by rename are noticed.
func (w *ConfigWatcher) Watch(filename string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.filename != "" {
		return fmt.Errorf("already watching %s", w.filename)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.filename = absPath
	go w.watchLoop(absPath)

	return nil
}

func (w *ConfigWatcher) watchLoop(filename string) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != filename {
				continue
			}

			w.mu.Lock()
			if w.closed {
				w.mu.Unlock()
				return
			}
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.debounceTimer = time.AfterFunc(debounceInterval, func() {
				w.handleConfigChange(filename)
			})
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			syslog.L.Error(err).WithMessage("config watcher error").Write()
		}
	}
}

func (w *ConfigWatcher) handleConfigChange(filename string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	configData, err := w.config.Parse(filename)
	if err != nil {
		syslog.L.Error(err).WithMessage("error parsing updated config").Write()
		return
	}

	if w.callback != nil {
		w.callback(configData)
	}
}

func (w *ConfigWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	watching := w.filename != ""
	w.mu.Unlock()

	err := w.watcher.Close()
	if watching {
		<-w.done
	}
	return err
}

// WatchSinkLevel applies the level of path's sink section to s whenever the
// file changes. The other sink options are fixed once the sink is built and
// are ignored here.
func WatchSinkLevel(path string, s *syslog.Sink) (*ConfigWatcher, error) {
	watcher, err := NewConfigWatcher(NewSinkConfig(), func(data *ConfigData) {
		opts, err := SinkOptions(data)
		if err != nil {
			syslog.L.Error(err).WithMessage("ignoring invalid sink config").Write()
			return
		}
		if opts.MaxLevel == s.Level() {
			return
		}
		s.SetLevel(opts.MaxLevel)
		syslog.L.Info().WithMessage("kernel log level changed").
			WithField("level", opts.MaxLevel.String()).
			Write()
	})
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(path); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}
