package pool

import "sync"

var uint32SlicePool = sync.Pool{
	New: func() any { return &[]uint32{} },
}

// GetUint32Slice retrieves a uint32 slice of exactly size elements from the pool.
//
// The contents are not zeroed. The caller must call the returned cleanup function,
// typically with defer, once the slice is no longer referenced.
//
// Example:
//
//	scratch, cleanup := pool.GetUint32Slice(len(row))
//	defer cleanup()
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint32SlicePool.Put(ptr) }
}
