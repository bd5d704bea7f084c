// Package mmap maps input files read-only for a single decode pass.
package mmap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/edsrzf/mmap-go"

	"graphtools/internal/domain"
)

// File is a read-only view of a whole file
type File struct {
	path     string
	f        *os.File
	contents mmap.MMap
	closed   bool
}

// Open maps path read-only. The caller must Close the returned file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, domain.ErrInputNotFound)
		}
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w: %v", path, domain.ErrIO, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: %w: is a directory", path, domain.ErrIO)
	}

	// zero-length regions cannot be mapped
	if info.Size() == 0 {
		return &File{path: path, f: f}, nil
	}

	contents, err := mmap.MapRegion(f, int(info.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w: %v", path, domain.ErrIO, err)
	}
	adviseSequential(contents)

	return &File{path: path, f: f, contents: contents}, nil
}

// Bytes returns the mapped contents; valid until Close
func (m *File) Bytes() []byte {
	return m.contents
}

// Len returns the file size in bytes
func (m *File) Len() int {
	return len(m.contents)
}

// Path returns the mapped file's path
func (m *File) Path() string {
	return m.path
}

// Close unmaps the file and closes its descriptor. Further calls are no-ops.
func (m *File) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var unmapErr error
	if m.contents != nil {
		unmapErr = m.contents.Unmap()
		m.contents = nil
	}
	closeErr := m.f.Close()

	if unmapErr != nil {
		return fmt.Errorf("munmap %s: %w: %v", m.path, domain.ErrIO, unmapErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w: %v", m.path, domain.ErrIO, closeErr)
	}
	return nil
}
