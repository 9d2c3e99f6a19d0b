package app

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"atlas-segment/internal/config"
)

// ConfigReloader polls the config file and reloads it when its
// modification time moves forward.
type ConfigReloader struct {
	path          string
	checkInterval time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	onReload func(cfg *config.Config)
}

// NewConfigReloader watches path. A file that does not exist yet is
// picked up once it is created.
func NewConfigReloader(path string, checkInterval time.Duration, logger *slog.Logger) *ConfigReloader {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ConfigReloader{
		path:          path,
		checkInterval: checkInterval,
		logger:        logger.With("component", "config-reload"),
	}
	if info, err := os.Stat(path); err == nil {
		r.baseline = info.ModTime()
	}
	return r
}

// OnReload sets the callback invoked with each successfully parsed
// config. It runs on the watcher goroutine.
func (r *ConfigReloader) OnReload(callback func(cfg *config.Config)) {
	r.mu.Lock()
	r.onReload = callback
	r.mu.Unlock()
}

// Start begins polling in a background goroutine.
func (r *ConfigReloader) Start() {
	r.mu.Lock()
	r.stopCh = make(chan struct{})
	stop := r.stopCh
	r.mu.Unlock()
	go r.watchLoop(stop)
}

// Stop ends polling.
func (r *ConfigReloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
}

func (r *ConfigReloader) watchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Check()
		}
	}
}

// Check reloads the config if the file changed since the last check and
// reports whether a reload was delivered. Invalid files are logged and
// skipped until they change again.
func (r *ConfigReloader) Check() bool {
	info, err := os.Stat(r.path)
	if err != nil {
		return false
	}
	r.mu.Lock()
	if !info.ModTime().After(r.baseline) {
		r.mu.Unlock()
		return false
	}
	r.baseline = info.ModTime()
	callback := r.onReload
	r.mu.Unlock()

	cfg, err := config.LoadConfig(r.path)
	if err != nil {
		r.logger.Warn("ignoring invalid config", "path", r.path, "error", err)
		return false
	}
	r.logger.Info("config reloaded", "path", r.path)
	if callback != nil {
		callback(cfg)
	}
	return true
}
