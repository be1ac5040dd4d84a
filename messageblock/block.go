// Package messageblock implements the shared byte arena backing a
// generation's in-memory message log: MessageBlocks hold packed mutation
// bytes, and a TeamIndex is a per-storage-team deque of (version, slice)
// entries referencing them (SPEC_FULL.md §3, §4.3, §9 "Arenas & shared byte
// buffers").
//
// No arena/ref-counted-buffer source existed anywhere in the retrieval pack
// to ground this against directly (see DESIGN.md); the refcounting scheme
// here is the standard one for shared, growable buffers in Go: atomic
// int32, Retain/Release pairs, reclaim on last release.
package messageblock

import (
	"sync/atomic"

	"github.com/flowlog/tlogd/types"
)

// Block is an append-only byte buffer shared between a generation's append
// path and every TeamIndex entry that still points into it. It is sealed
// once full; a sealed Block never grows again, only shrinks towards zero
// references.
type Block struct {
	buf      []byte
	refCount int32
	sealed   bool
}

// NewBlock allocates a Block with capacity for at least size bytes. The
// caller holds the first reference; Release it once done appending.
func NewBlock(size int) *Block {
	return &Block{
		buf:      make([]byte, 0, size),
		refCount: 1,
	}
}

// Cap reports the block's total byte capacity.
func (b *Block) Cap() int { return cap(b.buf) }

// Len reports how many bytes have been appended so far.
func (b *Block) Len() int { return len(b.buf) }

// Remaining reports how much capacity is left for further appends.
func (b *Block) Remaining() int { return cap(b.buf) - len(b.buf) }

// Sealed reports whether the block will accept no further appends.
func (b *Block) Sealed() bool { return b.sealed }

// Seal marks the block as full; future Append calls return ok=false.
func (b *Block) Seal() { b.sealed = true }

// Append copies data into the block's tail and returns the offset it was
// written at. ok is false if the block is sealed or lacks capacity; the
// caller must allocate a new Block in that case (SPEC_FULL.md §4.3 step 2).
func (b *Block) Append(data []byte) (offset int, ok bool) {
	if b.sealed || len(data) > b.Remaining() {
		return 0, false
	}
	offset = len(b.buf)
	b.buf = append(b.buf, data...)
	return offset, true
}

// Bytes returns the slice [offset, offset+length) written earlier by
// Append. The caller must hold a reference to the block for the slice to
// stay valid.
func (b *Block) Bytes(offset, length int) []byte {
	return b.buf[offset : offset+length]
}

// Retain adds a reference, e.g. when a TeamIndex entry is created pointing
// into this block.
func (b *Block) Retain() {
	atomic.AddInt32(&b.refCount, 1)
}

// Release drops a reference. It returns true exactly once, the first time
// the refcount reaches zero — the caller that observes true is responsible
// for discarding the block (it does nothing on its own; Go's GC reclaims
// the backing array once nothing points at the Block anymore).
func (b *Block) Release() bool {
	return atomic.AddInt32(&b.refCount, -1) == 0
}

// RefCount reports the current reference count, for tests and metrics.
func (b *Block) RefCount() int32 { return atomic.LoadInt32(&b.refCount) }

// Ref is a team index entry's handle into a Block: a version-stamped slice
// that keeps the block alive as long as the entry exists. Loc is an opaque
// cookie the owner (tlog.GenerationData) uses to remember the DiskQueue
// location this entry was framed at, needed for reference-mode spilling;
// messageblock itself never interprets it.
type Ref struct {
	Version types.Version
	Block   *Block
	Offset  int
	Length  int
	Loc     int64
}

// Bytes returns the referenced slice.
func (r Ref) Bytes() []byte { return r.Block.Bytes(r.Offset, r.Length) }
