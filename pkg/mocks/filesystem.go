package mocks

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/user/motionset/pkg/ports"
)

// FileSystem is an in-memory implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
	ExistsFunc    func(path string) (bool, error)
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func clean(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

func (m *FileSystem) ReadFile(p string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[clean(p)]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", p)
}

func (m *FileSystem) WriteFile(p string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(p, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	m.files[p] = data
	m.addParents(p)
	return nil
}

func (m *FileSystem) addParents(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/" && !m.dirs[dir]; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
}

func (m *FileSystem) MkdirAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	m.dirs[p] = true
	m.addParents(p)
	return nil
}

func (m *FileSystem) Exists(p string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = clean(p)
	if _, ok := m.files[p]; ok {
		return true, nil
	}
	return m.dirs[p], nil
}

func (m *FileSystem) ListDir(p string) ([]ports.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = clean(p)
	if !m.dirs[p] {
		return nil, fmt.Errorf("directory not found: %s", p)
	}
	seen := make(map[string]bool)
	var out []ports.DirEntry
	add := func(child string, isDir bool) {
		if path.Dir(child) != p || seen[child] {
			return
		}
		seen[child] = true
		out = append(out, ports.DirEntry{Name: path.Base(child), IsDir: isDir})
	}
	for f := range m.files {
		add(f, false)
	}
	for d := range m.dirs {
		add(d, true)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *FileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath, newPath = clean(oldPath), clean(newPath)
	if data, ok := m.files[oldPath]; ok {
		delete(m.files, oldPath)
		m.files[newPath] = data
		m.addParents(newPath)
		return nil
	}
	if !m.dirs[oldPath] {
		return fmt.Errorf("path not found: %s", oldPath)
	}
	prefix := oldPath + "/"
	for f, data := range m.files {
		if strings.HasPrefix(f, prefix) {
			delete(m.files, f)
			m.files[newPath+"/"+strings.TrimPrefix(f, prefix)] = data
		}
	}
	for d := range m.dirs {
		if d == oldPath || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
			m.dirs[newPath+strings.TrimPrefix(d, oldPath)] = true
		}
	}
	m.addParents(newPath)
	return nil
}

func (m *FileSystem) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	prefix := p + "/"
	for f := range m.files {
		if f == p || strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[clean(p)]
	return data, ok
}

// GetAllFiles returns all files (for test verification).
func (m *FileSystem) GetAllFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte)
	for k, v := range m.files {
		result[k] = v
	}
	return result
}

var _ ports.FileSystem = (*FileSystem)(nil)
