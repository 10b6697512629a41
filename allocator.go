package osge

import (
	"fmt"
)

type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

type IAllocator interface {
	Free(a *Allocation)
	Allocate(size uint64, align uint64) *Allocation
}

// LinearAllocator hands out aligned, non overlapping ranges of a block of Size bytes.
// Allocations are kept sorted by offset and the first gap large enough is used.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func makeAlignUp(a uint64, align uint64) uint64 {
	if align <= 1 {
		return a
	}
	m := a % align
	if m == 0 {
		return a
	}
	return (a - m) + align
}

func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Allocate returns nil when no gap can hold size bytes at the requested alignment
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 {
		return nil
	}

	insert := func(i int, na *Allocation) *Allocation {
		p.allocs = append(p.allocs, nil)
		copy(p.allocs[i+1:], p.allocs[i:])
		p.allocs[i] = na
		return na
	}

	var start uint64
	for i, a := range p.allocs {
		if a.Offset >= start && a.Offset-start >= size {
			return insert(i, &Allocation{Offset: start, Size: size})
		}
		start = makeAlignUp(a.Offset+a.Size, align)
	}
	if start <= p.Size && p.Size-start >= size {
		return insert(len(p.allocs), &Allocation{Offset: start, Size: size})
	}
	return nil
}

// Allocated returns the number of live allocations
func (p *LinearAllocator) Allocated() int {
	return len(p.allocs)
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
