// Package pool provides reusable buffers and bounded object pools.
//
// ByteBufferPool and the uint32 slice pool wrap sync.Pool and are meant for
// short-lived scratch memory. Bounded is a semaphore-limited pool for values
// that are expensive to build and unsafe to share, where a hard cap on the number
// of live instances matters more than reuse.
package pool
