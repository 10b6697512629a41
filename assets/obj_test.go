package assets

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quad = `# a unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(quad))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(m.Vertices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(m.Indices) != len(want) {
		t.Fatalf("Indices = %v, want %v", m.Indices, want)
	}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", m.Indices, want)
		}
	}
	v := m.Vertices[1]
	if v.Pos != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Pos = %v", v.Pos)
	}
	if v.TexCoord != (mgl32.Vec2{1, 1}) {
		t.Errorf("TexCoord = %v, want a flipped v", v.TexCoord)
	}
	if v.Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Normal = %v", v.Normal)
	}
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 3 || len(m.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices", len(m.Vertices), len(m.Indices))
	}
	if m.Vertices[2].Pos != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("last vertex = %v", m.Vertices[2].Pos)
	}
}

func TestParseOBJDedup(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 3 2 4\n"
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(m.Vertices))
	}
	if len(m.Indices) != 6 {
		t.Errorf("len(Indices) = %d, want 6", len(m.Indices))
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := map[string]string{
		"no faces":       "v 0 0 0\n",
		"out of range":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"short face":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":      "v 0 x 0\n",
		"short vertex":   "v 0 0\n",
		"bad uv index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n",
		"missing coords": "f 1 2 3\n",
	}
	for name, src := range tests {
		if _, err := ParseOBJ(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		s     string
		count int
		want  int
		ok    bool
	}{
		{"", 3, -1, true},
		{"1", 3, 0, true},
		{"3", 3, 2, true},
		{"-1", 3, 2, true},
		{"-3", 3, 0, true},
		{"-4", 3, -1, false},
		{"4", 3, -1, false},
		{"0", 3, -1, false},
	}
	for _, tt := range tests {
		got, err := resolveIndex(tt.s, tt.count)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("resolveIndex(%q, %d) = %d, %v", tt.s, tt.count, got, err)
		}
	}
}
