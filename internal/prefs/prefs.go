// Package prefs stores small client-local preferences in a YAML file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// LogPanelExpanded records whether the dashboard log panel is open.
const LogPanelExpanded = "log_panel_expanded"

// DefaultPath returns $YMF_PREFS_FILE or <user config dir>/ymf/prefs.yaml.
func DefaultPath() string {
	if p := os.Getenv("YMF_PREFS_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ymf", "prefs.yaml")
}

// Store is a key/value preference file. It is safe for concurrent use.
// The zero path keeps values in memory only.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]any
	logger *slog.Logger
}

// Open loads the store at path. A missing file is an empty store; a
// corrupt one is logged and treated as empty.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, values: make(map[string]any), logger: logger}
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s
	case err != nil:
		logger.Warn("failed to read prefs", "file", path, "error", err)
		return s
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		logger.Warn("ignoring corrupt prefs file", "file", path, "error", err)
		s.values = make(map[string]any)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s
}

// Bool returns the boolean stored under key, or def when it is absent or
// not a boolean.
func (s *Store) Bool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.values[key].(bool); ok {
		return b
	}
	return def
}

// SetBool stores v under key and writes the file through.
func (s *Store) SetBool(key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return s.save()
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
