package prompt

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// PersonaSource supplies the persona text for each prompt.
type PersonaSource interface {
	Load() (string, error)
}

// StaticPersona is a fixed PersonaSource.
type StaticPersona string

// Load implements PersonaSource.
func (p StaticPersona) Load() (string, error) {
	if s := strings.TrimSpace(string(p)); s != "" {
		return s, nil
	}
	return DefaultPersona, nil
}

// PersonaLoader reads the persona from a file and re-reads it when the
// file's modification time changes.
type PersonaLoader struct {
	path string

	mu       sync.RWMutex
	content  string
	modTime  time.Time
	notFound bool
}

// NewPersonaLoader creates a loader for path.
func NewPersonaLoader(path string) *PersonaLoader {
	return &PersonaLoader{path: path}
}

// LoadPersona reads path once. A missing or empty file yields
// DefaultPersona.
func LoadPersona(path string) (string, error) {
	if path == "" {
		return DefaultPersona, nil
	}
	return NewPersonaLoader(path).Load()
}

// Load returns the current persona.
//
// Behavior:
//   - File missing → DefaultPersona, no error.
//   - File empty   → DefaultPersona, no error.
//   - ModTime unchanged → cached content.
//   - ModTime changed   → re-read file.
func (l *PersonaLoader) Load() (string, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.markNotFound()
			return DefaultPersona, nil
		}
		return "", err
	}

	modTime := info.ModTime()

	l.mu.RLock()
	if !l.notFound && l.modTime.Equal(modTime) && l.content != "" {
		cached := l.content
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.markNotFound()
			return DefaultPersona, nil
		}
		return "", err
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		l.markNotFound()
		return DefaultPersona, nil
	}

	l.mu.Lock()
	l.content = content
	l.modTime = modTime
	l.notFound = false
	l.mu.Unlock()

	return content, nil
}

func (l *PersonaLoader) markNotFound() {
	l.mu.Lock()
	l.notFound = true
	l.content = ""
	l.modTime = time.Time{}
	l.mu.Unlock()
}
