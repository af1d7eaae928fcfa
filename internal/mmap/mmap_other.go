//go:build !unix

package mmap

import "os"

// Open falls back to reading the whole file where mmap is unavailable.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &File{f: f, data: data}, nil
}

// Close closes the file.
func (m *File) Close() error {
	m.data = nil
	return m.f.Close()
}
