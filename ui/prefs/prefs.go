// Package prefs provides JSON-based user preferences: last upload
// directory, mode, marker style and window size.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"expo-floorplan/internal/version"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyLastDir      = "lastDirectory"
	KeyMode         = "mode"
	KeyMarkerStyle  = "markerStyle"
	KeyWindowWidth  = "windowWidth"
	KeyWindowHeight = "windowHeight"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from the user config directory. Returns empty
// preferences if the file doesn't exist or cannot be parsed.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, version.Name))
}

// LoadFrom reads preferences from dir.
func LoadFrom(dir string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   filepath.Join(dir, prefsFile),
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the preferences file location.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk through a temporary file.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, prefsFile+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.values[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// WindowSize returns the saved window size, or the fallback.
func (p *Prefs) WindowSize(fallbackW, fallbackH float64) (float64, float64) {
	w := p.FloatWithFallback(KeyWindowWidth, fallbackW)
	h := p.FloatWithFallback(KeyWindowHeight, fallbackH)
	if w <= 0 || h <= 0 {
		return fallbackW, fallbackH
	}
	return w, h
}

// SetWindowSize stores the window size.
func (p *Prefs) SetWindowSize(w, h float64) {
	p.SetFloat(KeyWindowWidth, w)
	p.SetFloat(KeyWindowHeight, h)
}
