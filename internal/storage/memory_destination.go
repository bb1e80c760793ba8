package storage

import (
	"context"
	"io"
	"sort"
	"sync"
)

// MemoryFile is a file held by a MemoryDestination.
type MemoryFile struct {
	ContentType string
	Data        []byte
}

// MemoryDestination keeps written files in memory. It is useful for tests and
// for previewing a build without touching the filesystem.
type MemoryDestination struct {
	mu      sync.RWMutex
	files   map[string]MemoryFile
	cleaned int

	// WriteErr, when set, is returned (wrapped) by every WriteFile call.
	WriteErr error
	// CleanErr, when set, is returned (wrapped) by every Clean call.
	CleanErr error
}

// NewMemoryDestination creates an empty in-memory destination.
func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{files: make(map[string]MemoryFile)}
}

// WriteFile implements Destination.
func (m *MemoryDestination) WriteFile(ctx context.Context, relPath, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: relPath, Err: err}
	}
	clean, err := CleanPath(relPath)
	if err != nil {
		return &WriteError{Path: relPath, Err: err}
	}
	if m.WriteErr != nil {
		return &WriteError{Path: clean, Err: m.WriteErr}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &WriteError{Path: clean, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[clean] = MemoryFile{ContentType: contentType, Data: data}
	return nil
}

// Clean implements Destination.
func (m *MemoryDestination) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CleanError{Root: "memory", Err: err}
	}
	if m.CleanErr != nil {
		return &CleanError{Root: "memory", Err: m.CleanErr}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]MemoryFile)
	m.cleaned++
	return nil
}

// File returns the file stored under relPath.
func (m *MemoryDestination) File(relPath string) (MemoryFile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[relPath]
	return f, ok
}

// Paths returns all stored paths, sorted.
func (m *MemoryDestination) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Cleaned returns how many times Clean succeeded.
func (m *MemoryDestination) Cleaned() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cleaned
}

var _ Destination = (*MemoryDestination)(nil)
