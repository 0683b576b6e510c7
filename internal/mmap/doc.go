// Package mmap maps input files read-only into memory.
//
// # Usage
//
//	m, err := mmap.Open("points.csv")
//	if err != nil { ... }
//	defer m.Close()
//
//	// stream a byte range without copying the file into the heap
//	r := io.NewSectionReader(m, off, n)
//
//	// tell the kernel the file is parsed front to back
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not use slices returned by Bytes after Close.
package mmap
