package mmap

import (
	"os"
	"sync/atomic"
)

// File is a read-only view of a file's contents.
type File struct {
	data   []byte
	unmap  func([]byte) error
	closed atomic.Bool
}

// Open maps the file at path into memory as read-only.
// Empty files yield an empty, valid File.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &File{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &File{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *File) Bytes() []byte {
	if m == nil || m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the size of the mapping in bytes.
func (m *File) Len() int {
	return len(m.Bytes())
}

// Advise passes an access hint to the kernel. It is a no-op where
// unsupported.
func (m *File) Advise(p AccessPattern) error {
	if m == nil || m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, p)
}

// Close releases the mapping. It is safe to call more than once.
func (m *File) Close() error {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	data := m.data
	m.data = nil
	if m.unmap != nil && data != nil {
		return m.unmap(data)
	}
	return nil
}
