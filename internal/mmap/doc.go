// Package mmap maps measurement and model files read-only into memory.
//
// Measurement directories hold many small-to-medium text tables that are
// parsed once, front to back. Mapping them avoids a copy through kernel
// buffers and lets the parser slice lines straight out of the page cache.
//
//	f, err := mmap.Open("f1200_x.tfs")
//	if err != nil { ... }
//	defer f.Close()
//	_ = f.Advise(mmap.AccessSequential)
//	data := f.Bytes()
//
// On platforms without mmap(2) the file is read into a heap buffer and the
// same API is served from it.
package mmap
