package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	tex, err := DecodeTexture(bytes.NewReader(encodePNG(t, 3, 2)), 0)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 3*2*4 {
		t.Fatalf("len(Pixels) = %d", len(tex.Pixels))
	}
	// pixel (2, 1)
	px := tex.Pixels[(1*3+2)*4:]
	if px[0] != 2 || px[1] != 1 || px[2] != 7 || px[3] != 255 {
		t.Errorf("pixel (2,1) = %v", px[:4])
	}
}

func TestDecodeTextureDownscale(t *testing.T) {
	tex, err := DecodeTexture(bytes.NewReader(encodePNG(t, 64, 16)), 32)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 32 || tex.Height != 8 {
		t.Errorf("size = %dx%d, want 32x8", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 32*8*4 {
		t.Errorf("len(Pixels) = %d", len(tex.Pixels))
	}
}

func TestDecodeTextureGarbage(t *testing.T) {
	if _, err := DecodeTexture(bytes.NewReader([]byte("not an image")), 0); err == nil {
		t.Error("expected an error")
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	tex, err := LoadTexture(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Name != "checker" {
		t.Errorf("Name = %q", tex.Name)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, limit int
		ww, wh      int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{100, 50, 10, 10, 5},
		{50, 100, 10, 5, 10},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fitSize(tt.w, tt.h, tt.limit)
		if w != tt.ww || h != tt.wh {
			t.Errorf("fitSize(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.limit, w, h, tt.ww, tt.wh)
		}
	}
}
