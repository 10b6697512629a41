package osge

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

func TestVertexLayout(t *testing.T) {
	if vertexSize != 32 {
		t.Fatalf("vertex size = %d, want 32", vertexSize)
	}
	var data VertexData
	if got := data.GetBindingDescription(); got.Stride != vertexSize || got.InputRate != vk.VertexInputRateVertex {
		t.Errorf("binding = %+v", got)
	}

	want := []struct {
		location uint32
		format   vk.Format
		offset   uint32
	}{
		{0, vk.FormatR32g32b32Sfloat, 0},
		{1, vk.FormatR32g32b32Sfloat, 12},
		{2, vk.FormatR32g32Sfloat, 24},
	}
	attrs := data.GetAttributeDescriptions()
	if len(attrs) != len(want) {
		t.Fatalf("attributes = %d, want %d", len(attrs), len(want))
	}
	for i, w := range want {
		a := attrs[i]
		if a.Location != w.location || a.Format != w.format || a.Offset != w.offset {
			t.Errorf("attribute %d = %+v", i, a)
		}
	}
}

func TestVertexDataBytes(t *testing.T) {
	mesh := QuadMesh()
	b := mesh.Vertices.Bytes()
	if len(b) != len(mesh.Vertices)*32 {
		t.Fatalf("bytes = %d, want %d", len(b), len(mesh.Vertices)*32)
	}

	// what the GPU sees after a staging copy
	dst := make([]byte, len(b))
	if n := copyToMapped(unsafe.Pointer(&dst[0]), b); n != len(b) {
		t.Fatalf("copied %d bytes", n)
	}
	if !bytes.Equal(dst, b) {
		t.Error("mapped copy differs from source")
	}
	back := unsafe.Slice((*Vertex)(unsafe.Pointer(&dst[0])), len(mesh.Vertices))
	for i := range back {
		if back[i] != mesh.Vertices[i] {
			t.Errorf("vertex %d = %+v, want %+v", i, back[i], mesh.Vertices[i])
		}
	}

	if VertexData(nil).Bytes() != nil {
		t.Error("empty vertex data has bytes")
	}
	if copyToMapped(nil, b) != 0 {
		t.Error("copied into a nil mapping")
	}
}

func TestIndexData(t *testing.T) {
	idx := IndexData{0, 1, 2, 2, 3, 0}
	if idx.IndexType() != vk.IndexTypeUint32 || idx.Count() != 6 {
		t.Errorf("type %d, count %d", idx.IndexType(), idx.Count())
	}
	b := idx.Bytes()
	if len(b) != 24 {
		t.Fatalf("bytes = %d, want 24", len(b))
	}
	if got := *(*uint32)(unsafe.Pointer(&b[12])); got != 2 {
		t.Errorf("index 3 = %d, want 2", got)
	}
}

func TestMeshAppend(t *testing.T) {
	var mesh Mesh
	tri := Mesh{
		Vertices: VertexData{{}, {Pos: mgl32.Vec3{1, 0, 0}}, {Pos: mgl32.Vec3{0, 1, 0}}},
		Indices:  IndexData{0, 1, 2},
	}
	mesh.Append(tri)
	mesh.Append(tri)
	mesh.Append(QuadMesh())

	if len(mesh.Vertices) != 10 {
		t.Fatalf("vertices = %d, want 10", len(mesh.Vertices))
	}
	want := IndexData{0, 1, 2, 3, 4, 5, 6, 7, 8, 8, 9, 6}
	if len(mesh.Indices) != len(want) {
		t.Fatalf("indices = %v, want %v", mesh.Indices, want)
	}
	for i := range want {
		if mesh.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", mesh.Indices, want)
		}
	}
	for _, i := range mesh.Indices {
		if int(i) >= len(mesh.Vertices) {
			t.Errorf("index %d out of range", i)
		}
	}
}
