package osge

import (
	"testing"
)

func TestAlign(t *testing.T) {
	if makeAlignUp(12, 3) != 12 {
		t.Fail()
	}

	if makeAlignUp(10, 3) != 12 {
		t.Fail()
	}

	if makeAlignUp(7, 0) != 7 {
		t.Fail()
	}
}

func TestAllocator(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	ra := a.Allocate(2048, 1)
	if ra != nil {
		t.Error("Failed first allocation")
	}

	ra = a.Allocate(512, 1)
	fa := ra
	if ra == nil || ra.Offset != 0 {
		t.Fatalf("Failed 2nd allocation %v", ra)
	}

	ra = a.Allocate(768, 1)
	if ra != nil {
		t.Error("Failed 3rd allocation")
	}

	ra = a.Allocate(500, 1)
	k := ra
	if ra == nil || ra.Offset != 512 {
		t.Fatalf("Failed 4th allocation %v", ra)
	}

	ra = a.Allocate(50, 1)
	if ra != nil {
		t.Error("Failed 5th allocation")
	}

	a.Free(fa)

	ra = a.Allocate(256, 1)
	if ra == nil || ra.Offset != 0 {
		t.Fatalf("Failed 6th allocation %v", ra)
	}

	ra = a.Allocate(256, 1)
	if ra == nil || ra.Offset != 256 {
		t.Fatalf("Failed 7th allocation %v", ra)
	}

	a.Free(k)
	if a.Allocated() != 2 {
		t.Errorf("expected 2 live allocations, got %d: %s", a.Allocated(), a.String())
	}
}

func TestAllocatorAlignment(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	var offsets []uint64
	for i := 0; i < 4; i++ {
		ra := a.Allocate(100, 256)
		if ra == nil {
			t.Fatalf("allocation %d failed", i)
		}
		offsets = append(offsets, ra.Offset)
	}
	for i, o := range offsets {
		if o != uint64(i)*256 {
			t.Errorf("allocation %d at offset %d, want %d", i, o, i*256)
		}
	}
	if ra := a.Allocate(100, 256); ra != nil {
		t.Errorf("expected pool to be exhausted, got %v", ra)
	}
	if ra := a.Allocate(0, 1); ra != nil {
		t.Errorf("zero sized allocation should fail, got %v", ra)
	}
}
