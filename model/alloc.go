package model

import (
	"fmt"

	mmap "github.com/edsrzf/mmap-go"
)

// Allocator provides the storage behind a Strip's pixel buffer. Alloc must
// return zero-filled memory of exactly n bytes.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte) error
}

// HeapAllocator allocates pixel storage on the Go heap.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) (b []byte, err error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid buffer size %d", n)
	}
	defer func() {
		// makeslice panics on lengths the runtime can never satisfy.
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("couldn't allocate %d bytes: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}

func (HeapAllocator) Free([]byte) error { return nil }

// MappedAllocator backs pixel storage with anonymous memory mappings, the
// same way DMA-fed strand drivers keep their frame buffers outside the Go
// heap. Zero-length buffers are not mapped.
type MappedAllocator struct{}

func (MappedAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid buffer size %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	m, err := mmap.MapRegion(nil, n, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't map %d bytes: %w", n, err)
	}
	return []byte(m), nil
}

func (MappedAllocator) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	m := mmap.MMap(b)
	return m.Unmap()
}
