package osge

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func spirv(words ...uint32) []byte {
	code := make([]byte, 4*(len(words)+1))
	binary.LittleEndian.PutUint32(code, spirvMagic)
	for i, w := range words {
		binary.LittleEndian.PutUint32(code[4*(i+1):], w)
	}
	return code
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidSPIRV(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want bool
	}{
		{"module", spirv(0x00010000, 7), true},
		{"magic only", spirv(), true},
		{"empty", nil, false},
		{"short", []byte{0x03, 0x02}, false},
		{"unaligned", append(spirv(1), 0), false},
		{"big endian", []byte{0x07, 0x23, 0x02, 0x03}, false},
		{"text", []byte("#version 450"), false},
	}
	for _, tt := range tests {
		if got := ValidSPIRV(tt.code); got != tt.want {
			t.Errorf("%s: ValidSPIRV = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShaderStageForPath(t *testing.T) {
	tests := []struct {
		path  string
		stage vk.ShaderStageFlagBits
		ok    bool
	}{
		{"shaders/triangle.vert", vk.ShaderStageVertexBit, true},
		{"shaders/triangle.FRAG", vk.ShaderStageFragmentBit, true},
		{"shaders/triangle.comp", 0, false},
		{"shaders/triangle.vert.spv", 0, false},
	}
	for _, tt := range tests {
		stage, ok := ShaderStageForPath(tt.path)
		if stage != tt.stage || ok != tt.ok {
			t.Errorf("ShaderStageForPath(%q) = %d, %v", tt.path, stage, ok)
		}
	}
}

func TestDiscoverShaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vert", []byte("not spirv"))
	writeFile(t, dir, "b.vert", spirv(1))
	writeFile(t, dir, "c.vert", spirv(2))
	writeFile(t, dir, "main.frag", spirv(3))
	writeFile(t, dir, "notes.txt", spirv(4))

	got, err := DiscoverShaders(dir, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d shaders, want 2", len(got))
	}
	if got[0].Stage != vk.ShaderStageVertexBit || filepath.Base(got[0].Path) != "b.vert" {
		t.Errorf("vertex shader = %s (%d)", got[0].Path, got[0].Stage)
	}
	if got[1].Stage != vk.ShaderStageFragmentBit || filepath.Base(got[1].Path) != "main.frag" {
		t.Errorf("fragment shader = %s (%d)", got[1].Path, got[1].Stage)
	}
	if len(got[0].Code) != 8 {
		t.Errorf("vertex code = %d bytes, want 8", len(got[0].Code))
	}
}

func TestDiscoverShadersMissingStage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.vert", spirv(1))
	writeFile(t, dir, "broken.frag", []byte{1, 2, 3, 4})

	if _, err := DiscoverShaders(dir, discardLogger()); errors.Cause(err) != ErrNoShaders {
		t.Errorf("err = %v, want ErrNoShaders", err)
	}
}

func TestDiscoverShadersMissingDir(t *testing.T) {
	if _, err := DiscoverShaders(filepath.Join(t.TempDir(), "nope"), discardLogger()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSliceUint32(t *testing.T) {
	code := spirv(42)
	words := sliceUint32(code)
	if len(words) != 2 || words[0] != spirvMagic || words[1] != 42 {
		t.Errorf("sliceUint32 = %v", words)
	}
}
