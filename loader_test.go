package osge

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ArchorByte/osge-sub000/assets"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
`

func TestMeshFromModel(t *testing.T) {
	m := &assets.Model{
		Vertices: []assets.Vertex{
			{Pos: mgl32.Vec3{1, 2, 3}, TexCoord: mgl32.Vec2{0.25, 0.5}},
		},
		Indices: []uint32{0, 0, 0},
	}
	mesh := MeshFromModel(m)
	want := Vertex{Pos: mgl32.Vec3{1, 2, 3}, Color: white, TexCoord: mgl32.Vec2{0.25, 0.5}}
	if len(mesh.Vertices) != 1 || mesh.Vertices[0] != want {
		t.Errorf("vertices = %+v", mesh.Vertices)
	}
	if len(mesh.Indices) != 3 {
		t.Errorf("indices = %v", mesh.Indices)
	}

	m.Indices[0] = 7
	if mesh.Indices[0] != 0 {
		t.Error("mesh shares its index slice with the model")
	}
}

func TestLoadMeshesFallback(t *testing.T) {
	log := discardLogger()
	quad := QuadMesh()

	for _, dir := range []string{t.TempDir(), "does-not-exist"} {
		mesh := LoadMeshes(dir, log)
		if len(mesh.Vertices) != len(quad.Vertices) || len(mesh.Indices) != len(quad.Indices) {
			t.Errorf("%s: got %d vertices, %d indices, want the quad", dir, len(mesh.Vertices), len(mesh.Indices))
		}
	}
}

func TestLoadMeshesMerges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.obj", []byte(triangleOBJ))
	writeFile(t, dir, "b.obj", []byte(triangleOBJ))
	writeFile(t, dir, "broken.obj", []byte("v 0 0 0\n"))

	mesh := LoadMeshes(dir, discardLogger())
	if len(mesh.Vertices) != 6 {
		t.Fatalf("vertices = %d, want 6", len(mesh.Vertices))
	}
	want := IndexData{0, 1, 2, 3, 4, 5}
	if len(mesh.Indices) != len(want) {
		t.Fatalf("indices = %v, want %v", mesh.Indices, want)
	}
	for i := range want {
		if mesh.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", mesh.Indices, want)
		}
	}
	if mesh.Vertices[3].Color != white {
		t.Errorf("model vertex color = %v, want white", mesh.Vertices[3].Color)
	}
}
