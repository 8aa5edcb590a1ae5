package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"stockbrief/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ChangeListener is called after a successful reload.
type ChangeListener func(Set)

// Registry serves the current prompt set and optionally reloads it when the
// backing file changes. Without a path it serves the embedded defaults.
type Registry struct {
	path string

	mu        sync.RWMutex
	set       Set
	listeners []ChangeListener
}

func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path)}
	if r.path == "" {
		r.set = Default()
		return r, nil
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Current returns the active prompt set.
func (r *Registry) Current() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set
}

func (r *Registry) Render(kind Kind, vars Vars) (Rendered, error) {
	return r.Current().Render(kind, vars)
}

// OnChange registers fn for reload notifications.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Watch starts reloading on file changes. A broken edit is logged and the
// previous set stays active.
func (r *Registry) Watch() error {
	if r.path == "" {
		return fmt.Errorf("prompt registry has no file to watch")
	}
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch prompt file failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
			return
		}
		if err := r.reload(); err != nil {
			logger.Errorf("prompt reload failed: %v", err)
			return
		}
		r.notify()
	})
	v.WatchConfig()
	logger.Infof("watching prompt file %s", r.path)
	return nil
}

func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read prompt file failed: %w", err)
	}
	set, err := Parse(data, filepath.Base(r.path))
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.set = set
	r.mu.Unlock()
	logger.Infof("prompt set v%d loaded from %s", set.Version, set.Source)
	return nil
}

func (r *Registry) notify() {
	r.mu.RLock()
	set := r.set
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(set)
	}
}
