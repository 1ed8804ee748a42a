package ports

// DirEntry is a single directory listing entry.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories.
	// Readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// ListDir returns the entries of a directory sorted by name.
	ListDir(path string) ([]DirEntry, error)

	// Rename moves a file or directory.
	Rename(oldPath, newPath string) error

	// RemoveAll deletes a path and any children it contains.
	RemoveAll(path string) error
}
