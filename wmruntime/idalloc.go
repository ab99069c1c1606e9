package wmruntime

import (
	"container/heap"
	"errors"
)

// ErrIDsExhausted is returned by IDAllocator.Alloc when the allocator's
// range has no ids left to hand out, free or fresh.
var ErrIDsExhausted = errors.New("wmruntime: id allocator exhausted")

// ErrIDOutOfRange is returned by IDAllocator.Free when the freed id was
// never handed out by this allocator.
var ErrIDOutOfRange = errors.New("wmruntime: id out of allocator range")

// IDAllocator hands out ids within [start, end], reusing the lowest freed
// id before minting a new one. The original source's allocator tracks a
// doubly-linked list of contiguous free ranges; this implementation
// achieves the same observable "reuse lowest id first" behavior with a
// min-heap of individually freed ids, which is simpler in Go and does not
// need to merge adjacent ranges to stay correct.
type IDAllocator struct {
	start uint32
	end   uint32
	next  uint32
	free  idHeap
}

// NewIDAllocator returns an allocator over the inclusive range [start, end].
func NewIDAllocator(start, end uint32) *IDAllocator {
	return &IDAllocator{start: start, end: end, next: start}
}

// Alloc returns the next id: the lowest previously-freed id if any exist,
// otherwise the next never-used id in the range.
func (a *IDAllocator) Alloc() (uint32, error) {
	if len(a.free) > 0 {
		id := heap.Pop(&a.free).(uint32)
		return id, nil
	}
	if a.next > a.end {
		return 0, ErrIDsExhausted
	}
	id := a.next
	a.next++
	return id, nil
}

// Free returns id to the allocator so a future Alloc may reuse it.
func (a *IDAllocator) Free(id uint32) error {
	if id < a.start || id >= a.next {
		return ErrIDOutOfRange
	}
	heap.Push(&a.free, id)
	return nil
}

type idHeap []uint32

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(uint32)) }

func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
