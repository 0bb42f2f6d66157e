package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads session YAML and plan files, caching file contents by path.
// Plans are parsed fresh on every LoadPlan because their treatments carry
// per-session state.
type Loader struct {
	mu    sync.RWMutex
	texts map[string]string
}

func NewLoader() *Loader {
	return &Loader{texts: make(map[string]string)}
}

// LoadSession reads a session file and resolves it against defaults and o.
// An empty path yields the defaults plus overrides.
func (l *Loader) LoadSession(path string, o Overrides) (SessionConfig, error) {
	var file SessionConfig
	if path != "" {
		b, err := l.read(path)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("read session: %w", err)
		}
		if err := yaml.Unmarshal([]byte(b), &file); err != nil {
			return SessionConfig{}, fmt.Errorf("decode session %s: %w", path, err)
		}
	}
	cfg := Resolve(file, o)
	if err := ValidateSession(cfg); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}

// LoadPlan reads and parses the plan at path.
func (l *Loader) LoadPlan(path string, opts ...ParseOption) (*SimulationPlan, error) {
	text, err := l.read(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(text, opts...)
}

func (l *Loader) read(path string) (string, error) {
	l.mu.RLock()
	text, ok := l.texts[path]
	l.mu.RUnlock()
	if ok {
		return text, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	l.mu.Lock()
	l.texts[path] = string(b)
	l.mu.Unlock()
	return string(b), nil
}

// Invalidate drops cached contents. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts = make(map[string]string)
}
