package osge

import "testing"

func TestMipLevels(t *testing.T) {
	tests := []struct {
		w, h uint32
		want uint32
	}{
		{0, 0, 1},
		{1, 1, 1},
		{2, 1, 2},
		{3, 3, 2},
		{4, 4, 3},
		{512, 256, 10},
		{1, 1024, 11},
		{1023, 1, 10},
		{4096, 4096, 13},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.w, tt.h); got != tt.want {
			t.Errorf("MipLevels(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestMipExtent(t *testing.T) {
	tests := map[int32]int32{512: 256, 3: 1, 2: 1, 1: 1, 0: 1}
	for in, want := range tests {
		if got := mipExtent(in); got != want {
			t.Errorf("mipExtent(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMipChainEndsAtOne(t *testing.T) {
	w, h := int32(300), int32(17)
	levels := MipLevels(uint32(w), uint32(h))
	for i := uint32(1); i < levels; i++ {
		w, h = mipExtent(w), mipExtent(h)
	}
	if w != 1 || h != 1 {
		t.Errorf("last level is %dx%d, want 1x1", w, h)
	}
}
