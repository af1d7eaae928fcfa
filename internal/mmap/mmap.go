// Package mmap provides read-only memory mapping of files for zero-copy
// snapshot reads.
package mmap

import "os"

// File is a read-only memory-mapped file.
type File struct {
	f    *os.File
	data []byte
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (m *File) Bytes() []byte {
	return m.data
}

// Len returns the mapped length in bytes.
func (m *File) Len() int {
	return len(m.data)
}
